package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pacuit/conferencia/internal/bootstrap"
	"github.com/pacuit/conferencia/internal/config"
	"github.com/pacuit/conferencia/internal/records"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backend, err := bootstrap.OpenRecords(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível abrir o backend de registros")
	}
	defer backend.Close()

	service := records.NewService(backend.Store, backend.Backend, nil)

	cmd := os.Args[1]
	if err := run(ctx, service, cmd, os.Args[2:], os.Stdout); err != nil {
		backend.Close()
		if errors.Is(err, errUnknownCommand) {
			usage()
			os.Exit(1)
		}
		log.Fatal().Err(err).Str("command", cmd).Msg("falha ao executar comando")
	}
}

var errUnknownCommand = errors.New("comando desconhecido")

func run(ctx context.Context, service *records.Service, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "list":
		return runList(ctx, service, args, out)
	case "get":
		return runGet(ctx, service, args, out)
	case "create":
		return runCreate(ctx, service, args, out)
	case "delete":
		return runDelete(ctx, service, args, out)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "records CLI (usa RECORD_BACKEND e demais variáveis da API)")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  records list --collection tasks")
	fmt.Fprintln(os.Stderr, "  records get --collection users --id 42")
	fmt.Fprintln(os.Stderr, "  records create --collection tasks --data '{\"name\":\"Revisar\",\"slug\":\"revisar\"}'")
	fmt.Fprintln(os.Stderr, "  records create --collection tasks --data-file task.json")
	fmt.Fprintln(os.Stderr, "  records delete --collection tasks --id 42")
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	collection := fs.String("collection", records.CollectionTasks, "coleção (tasks, users, submissions, ...)")
	return fs, collection
}

func runList(ctx context.Context, service *records.Service, args []string, out io.Writer) error {
	fs, collection := newFlagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := service.List(ctx, *collection)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "nenhum registro em %s\n", *collection)
		return nil
	}
	return printJSON(out, list)
}

func runGet(ctx context.Context, service *records.Service, args []string, out io.Writer) error {
	fs, collection := newFlagSet("get")
	id := fs.String("id", "", "identificador do registro")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("id é obrigatório")
	}

	rec, err := service.Get(ctx, *collection, *id)
	if err != nil {
		return err
	}
	return printJSON(out, rec)
}

func runCreate(ctx context.Context, service *records.Service, args []string, out io.Writer) error {
	fs, collection := newFlagSet("create")
	var (
		dataJSON = fs.String("data", "", "JSON literal do registro")
		dataFile = fs.String("data-file", "", "arquivo JSON com o registro")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	data := records.Record{}
	switch {
	case *dataFile != "":
		raw, err := os.ReadFile(*dataFile)
		if err != nil {
			return fmt.Errorf("ler data-file: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse data-file: %w", err)
		}
	case *dataJSON != "":
		if err := json.Unmarshal([]byte(*dataJSON), &data); err != nil {
			return fmt.Errorf("parse data: %w", err)
		}
	default:
		return errors.New("informe --data ou --data-file")
	}

	rec, err := service.Create(ctx, *collection, data)
	if err != nil {
		return err
	}
	return printJSON(out, rec)
}

func runDelete(ctx context.Context, service *records.Service, args []string, out io.Writer) error {
	fs, collection := newFlagSet("delete")
	id := fs.String("id", "", "identificador do registro")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("id é obrigatório")
	}

	if err := service.Delete(ctx, *collection, *id); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s/%s removido\n", *collection, *id)
	return nil
}

func printJSON(out io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
