package main

import (
	"upload-form-server/internal/client"
	"upload-form-server/internal/dashboard"
	"upload-form-server/internal/editor"
	"upload-form-server/internal/model"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
)

// adminctl — консольный админ поверх того же API, что и веб-дашборд.
// Использует те же контроллеры состояния, что и UI
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "адрес сервера")
	token := flag.String("token", os.Getenv("UPLOAD_FORM_TOKEN"), "Bearer токен (или переменная UPLOAD_FORM_TOKEN)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	api := client.NewHTTPFormAPI(*serverURL, *token)
	board := dashboard.NewController(api)

	switch args[0] {
	case "list":
		if err := board.Load(ctx); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		printForms(board)

	case "toggle":
		requireArg(args, 2, "toggle <uuid>")
		if err := board.Load(ctx); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		if err := board.ToggleAccepting(ctx, args[1]); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		fmt.Println("приём ответов переключён")

	case "delete":
		requireArg(args, 2, "delete <uuid>")
		if err := board.Load(ctx); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		if err := board.Delete(ctx, args[1]); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		fmt.Println("форма удалена")

	case "publish":
		requireArg(args, 2, "publish <uuid>")
		issues, err := board.Publish(ctx, args[1])
		if err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		if len(issues) > 0 {
			fmt.Println("форма не опубликована:")
			for _, issue := range issues {
				fmt.Println("  - " + issue)
			}
			os.Exit(1)
		}
		fmt.Println("форма опубликована")

	case "create":
		requireArg(args, 2, "create <title>")
		formEditor := editor.NewController(api)
		if err := formEditor.Load(ctx, "new"); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		formEditor.Apply(func(form *model.Form) {
			form.Title = args[1]
		})
		if err := formEditor.Flush(ctx); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		fmt.Println("создан черновик " + formEditor.Draft().UUID)

	case "rename":
		requireArg(args, 3, "rename <uuid> <title>")
		formEditor := editor.NewController(api)
		if err := formEditor.Load(ctx, args[1]); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		formEditor.Apply(func(form *model.Form) {
			form.Title = args[2]
		})
		if err := formEditor.Flush(ctx); err != nil {
			log.Fatalf("ошибка: %v", err)
		}
		fmt.Println("форма переименована")

	default:
		usage()
		os.Exit(2)
	}
}

func printForms(board *dashboard.Controller) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "UUID\tНАЗВАНИЕ\tСТАТУС\tПРИЁМ\tОТПРАВОК")
	for _, item := range board.Forms() {
		accepting := "нет"
		if item.Form.IsAccepting {
			accepting = "да"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\n",
			item.Form.UUID,
			item.Form.Title,
			board.StatusOf(&item.Form),
			accepting,
			item.SubmissionCount,
		)
	}
	writer.Flush()
}

func requireArg(args []string, count int, usageLine string) {
	if len(args) < count {
		fmt.Fprintln(os.Stderr, "использование: adminctl "+usageLine)
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `использование: adminctl [-server URL] [-token TOKEN] команда

команды:
  list                  список форм со статусами
  create <title>        создать черновик формы
  rename <uuid> <title> переименовать форму
  toggle <uuid>         переключить приём ответов
  publish <uuid>        провалидировать и опубликовать форму
  delete <uuid>         удалить форму`)
}
