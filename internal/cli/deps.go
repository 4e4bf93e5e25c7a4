package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/ukydev/taller-finder/internal/proximity"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// Dependencies wires runtime services.
type Dependencies struct {
	// NewSearcher returns the place searcher behind the finder API at apiURL.
	NewSearcher func(apiURL string) proximity.PlaceSearcher
	Geocoder    proximity.Geocoder
	HTTPClient  *http.Client
	Version     string
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, errVersionShown) {
		return 0
	}
	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}
	_, _ = fmt.Fprintln(stderr, err.Error())
	return 1
}
