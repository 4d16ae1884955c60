package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

const (
	questionMarker = "Вопрос"
	answerMarker   = "Ответ"
)

// ReadDir parses every file in dir as a sequence of question/answer blocks and
// returns the corpus numbered from 1, in file-name order. encodingName is an
// IANA charset name ("KOI8-R", "UTF-8", ...) describing the source files.
// Answers are normalized at this point; prompts are kept verbatim.
func ReadDir(dir, encodingName string) ([]domain.Question, error) {
	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", encodingName)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var blocks []string
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		raw, err := io.ReadAll(transform.NewReader(f, enc.NewDecoder()))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		blocks = append(blocks, parseBlocks(string(raw))...)
	}

	return pairQuestions(blocks), nil
}

// parseBlocks extracts the body of every Вопрос/Ответ block in text. Blocks
// are separated by blank lines; the first line is the marker, the rest is the
// content with line breaks collapsed to spaces.
func parseBlocks(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if !strings.HasPrefix(block, questionMarker) && !strings.HasPrefix(block, answerMarker) {
			continue
		}
		lines := strings.Split(block, "\n")
		body := make([]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			body = append(body, strings.TrimSpace(line))
		}
		out = append(out, strings.Join(body, " "))
	}
	return out
}

// pairQuestions turns the alternating question/answer sequence into numbered
// corpus entries. A trailing unpaired block is dropped.
func pairQuestions(blocks []string) []domain.Question {
	questions := make([]domain.Question, 0, len(blocks)/2)
	for i := 0; i+1 < len(blocks); i += 2 {
		questions = append(questions, domain.Question{
			ID:     strconv.Itoa(len(questions) + 1),
			Prompt: blocks[i],
			Answer: NormalizeAnswer(blocks[i+1]),
		})
	}
	return questions
}
