package scan

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmPrompt is asked before a file is rewritten
const ConfirmPrompt = "Are you sure to remove above entries from the file? (Yes/No) "

// Confirmer asks the operator before a destructive step
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer reads yes/no answers from a line-oriented input.
type PromptConfirmer struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPromptConfirmer prompts on out and reads answers from in
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewScanner(in), out: out}
}

// Confirm repeats the prompt until it reads y, yes, n or no (any case).
// End of input counts as no.
func (c *PromptConfirmer) Confirm(prompt string) (bool, error) {
	for {
		if _, err := fmt.Fprint(c.out, prompt); err != nil {
			return false, err
		}
		if !c.in.Scan() {
			return false, c.in.Err()
		}
		switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// AssumeYes confirms without asking
type AssumeYes struct{}

// Confirm implements Confirmer
func (AssumeYes) Confirm(string) (bool, error) {
	return true, nil
}
