package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drblury/weavekit/openapi"
)

type exportOptions struct {
	format   string
	output   string
	validate bool
	pretty   bool
	noPretty bool
}

func newExportCmd() *cobra.Command {
	opts := exportOptions{format: "json"}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the OpenAPI document as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pretty && opts.noPretty {
				return fmt.Errorf("cannot set both --pretty and --no-pretty")
			}
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			srv, err := app.newServer()
			if err != nil {
				return err
			}
			doc := srv.Document()

			if opts.validate {
				if err := doc.Validate(cmd.Context()); err != nil {
					return fmt.Errorf("document is invalid: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			tty := opts.output == "" && isTerminal(out)
			data, err := renderDocument(doc, opts, tty)
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := out.Write(data)
				return err
			}
			if err := writeFile(opts.output, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format: json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Validate the document before writing it")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Force indented JSON")
	cmd.Flags().BoolVar(&opts.noPretty, "no-pretty", false, "Force compact JSON")
	return cmd
}

func renderDocument(doc *openapi.Builder, opts exportOptions, tty bool) ([]byte, error) {
	switch opts.format {
	case "yaml", "yml":
		return doc.MarshalYAML()
	case "json":
		var (
			data []byte
			err  error
		)
		if opts.pretty || (tty && !opts.noPretty) {
			data, err = doc.MarshalIndentJSON()
		} else {
			data, err = doc.MarshalJSON()
		}
		if err != nil {
			return nil, err
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			data = append(data, '\n')
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected json or yaml)", opts.format)
	}
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
