// Package termprompt implements the interactive rename dialog on a
// terminal.
package termprompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/locale"
)

// Prompter reads the final file name from a terminal. Enter accepts the
// proposed name, "?" asks the naming service for a suggestion, and EOF
// (ctrl-d) cancels the upload.
type Prompter struct {
	In      io.Reader
	Out     io.Writer
	Catalog *locale.Catalog
}

// New creates a Prompter on stdin/stdout.
func New(catalog *locale.Catalog) *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout, Catalog: catalog}
}

func (p *Prompter) catalog() *locale.Catalog {
	if p.Catalog != nil {
		return p.Catalog
	}
	return locale.New(locale.LanguageEnglish)
}

// PromptName implements naming.Prompter.
func (p *Prompter) PromptName(ctx context.Context, proposed string, suggest func(context.Context) (string, error)) (string, error) {
	reader := bufio.NewReader(p.In)
	cat := p.catalog()

	for {
		fmt.Fprintf(p.Out, cat.T("rename.prompt"), proposed)

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				return "", fmt.Errorf("%w: %s", apperr.ErrCancelled, cat.T("rename.cancelled"))
			}
			if !errors.Is(err, io.EOF) {
				return "", err
			}
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			return proposed, nil
		case "?":
			if suggest == nil {
				fmt.Fprintln(p.Out, cat.T("vision.unconfigured"))
				continue
			}
			name, sErr := suggest(ctx)
			if sErr != nil {
				fmt.Fprintln(p.Out, cat.T("rename.fallback"))
				continue
			}
			proposed = name
		default:
			return line, nil
		}
	}
}
