package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var errNeedsConfirmation = errors.New("confirmation required: stdin is not a terminal, rerun with --yes")

// confirm asks question on stderr and reads y/yes from stdin. assumeYes
// skips the prompt. A non-terminal stdin without assumeYes is an error so
// scripts never block or proceed silently.
func confirm(cmd *cobra.Command, question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return false, errNeedsConfirmation
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
