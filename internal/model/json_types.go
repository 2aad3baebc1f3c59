package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Коллекции формы хранятся в Postgres сериализованным JSON (text-колонки),
// наружу отдаются структурами. Scanner/Valuer избавляют репозитории от
// ручной (де)сериализации.

type StringList []string

func (l StringList) Value() (driver.Value, error) { return marshalJSONColumn(l) }
func (l *StringList) Scan(src interface{}) error  { return scanJSONColumn(src, l) }

type UploadFieldList []UploadField

func (l UploadFieldList) Value() (driver.Value, error) { return marshalJSONColumn(l) }
func (l *UploadFieldList) Scan(src interface{}) error  { return scanJSONColumn(src, l) }

type QuestionList []CustomQuestion

func (l QuestionList) Value() (driver.Value, error) { return marshalJSONColumn(l) }
func (l *QuestionList) Scan(src interface{}) error  { return scanJSONColumn(src, l) }

type FileList []SubmissionFile

func (l FileList) Value() (driver.Value, error) { return marshalJSONColumn(l) }
func (l *FileList) Scan(src interface{}) error  { return scanJSONColumn(src, l) }

type AnswerList []Answer

func (l AnswerList) Value() (driver.Value, error) { return marshalJSONColumn(l) }
func (l *AnswerList) Scan(src interface{}) error  { return scanJSONColumn(src, l) }

func marshalJSONColumn(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanJSONColumn(src interface{}, dst interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("неподдерживаемый тип JSON-колонки: %T", src)
	}
}
