package service

import (
	"upload-form-server/config"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/util"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheetsClient : реализация ports.SpreadsheetAPI поверх Sheets API v4
type GoogleSheetsClient struct {
	service *sheets.Service
}

func NewGoogleSheetsClient(ctx context.Context, cfg *config.GoogleConfig) (*GoogleSheetsClient, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, util.LogError("[SheetsClient] не удалось прочитать креденшлы", err)
	}

	// токен сервис-аккаунта: ошибки ключа ловятся на старте, а не при первом запросе
	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, util.LogError("[SheetsClient] неверный ключ сервис-аккаунта", err)
	}

	service, err := sheets.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, util.LogError("[SheetsClient] не удалось создать клиент Sheets", err)
	}
	return &GoogleSheetsClient{service: service}, nil
}

func (c *GoogleSheetsClient) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	spreadsheet, err := c.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return spreadsheet.SpreadsheetId, nil
}

func (c *GoogleSheetsClient) SpreadsheetExists(ctx context.Context, spreadsheetID string) (bool, error) {
	_, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *GoogleSheetsClient) WriteRange(ctx context.Context, spreadsheetID string, writeRange string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (c *GoogleSheetsClient) AppendRows(ctx context.Context, spreadsheetID string, appendRange string, values [][]interface{}) (string, error) {
	response, err := c.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if response.Updates == nil {
		return "", fmt.Errorf("Sheets API не вернул добавленный диапазон")
	}
	return response.Updates.UpdatedRange, nil
}

func (c *GoogleSheetsClient) FormatRows(ctx context.Context, spreadsheetID string, format ports.RowFormat) error {
	background, err := parseHexColor(format.BackgroundHex)
	if err != nil {
		return err
	}

	requests := []*sheets.Request{{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:       0,
				StartRowIndex: format.StartRow,
				EndRowIndex:   format.EndRow,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					BackgroundColor: background,
					TextFormat:      &sheets.TextFormat{Bold: format.Bold},
				},
			},
			Fields: "userEnteredFormat(backgroundColor,textFormat)",
		},
	}}

	if format.FreezeHeader {
		requests = append(requests, &sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		})
	}

	_, err = c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func parseHexColor(hex string) (*sheets.Color, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return nil, fmt.Errorf("неверный формат цвета: %q", hex)
	}

	value, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("неверный формат цвета %q: %w", hex, err)
	}

	return &sheets.Color{
		Red:   float64(value>>16&0xFF) / 255,
		Green: float64(value>>8&0xFF) / 255,
		Blue:  float64(value&0xFF) / 255,
	}, nil
}
