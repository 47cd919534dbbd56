package useCases

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

// ErrLinksTemplateCreated: файла со ссылками не было, создали шаблон.
var ErrLinksTemplateCreated = errors.New("links file not found, template created")

const linksTemplate = `# Add your Telegram group links here, one per line
# Examples:
# https://t.me/example_group
# https://t.me/joinchat/XXXXXXXXXX
# https://t.me/+XXXXXXXXXX
`

// ParseLinks читает по ссылке на строку; пустые строки и # комментарии пропускаем.
func ParseLinks(r io.Reader) ([]domain.JoinTarget, error) {
	var targets []domain.JoinTarget

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, domain.Classify(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}
	return targets, nil
}

// LoadLinks читает файл ссылок. Если файла нет, пишет шаблон и возвращает ErrLinksTemplateCreated.
func LoadLinks(path string) ([]domain.JoinTarget, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if werr := os.WriteFile(path, []byte(linksTemplate), 0o644); werr != nil {
			return nil, fmt.Errorf("create links template %s: %w", path, werr)
		}
		return nil, ErrLinksTemplateCreated
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ParseLinks(f)
}

// WriteLinks пишет ссылки в том же формате, чтобы файл можно было скормить обратно.
func WriteLinks(w io.Writer, header string, targets []domain.JoinTarget) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		for _, l := range strings.Split(header, "\n") {
			if _, err := fmt.Fprintf(bw, "# %s\n", l); err != nil {
				return err
			}
		}
	}
	for _, t := range targets {
		if _, err := fmt.Fprintln(bw, t.RawLink); err != nil {
			return err
		}
	}
	return bw.Flush()
}
