package svn

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/abiosoft/lineprefix"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
)

var errorCodeRE = regexp.MustCompile(`\b(E\d{6})\b`)

// Errors that will not go away by trying again.
var fatalCodes = map[string]bool{
	"E170001": true, // authorization failed
	"E215004": true, // no more credentials
	"E170013": true, // unable to connect
	"E160013": true, // path not found
	"E170000": true, // illegal repository URL
	"E125002": true, // bad revision syntax
}

type client struct {
	console  consoles.Console
	username string
	password string
	verbose  bool
	binary   string
}

func (c *client) run(ctx context.Context, args ...string) ([]byte, error) {
	args = append(args, "--non-interactive")
	if c.username != "" {
		args = append(args, "--username", c.username)
	}
	if c.password != "" {
		args = append(args, "--password", c.password)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)

	if c.verbose {
		c.console.Debugf("Executing 'svn %v'\n", strings.Join(redact(args), " "))
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.verbose {
		prefix := lineprefix.PrefixFunc(func() string { return "svn: " })
		cmd.Stderr = io.MultiWriter(&stderr, lineprefix.New(lineprefix.Writer(os.Stderr), prefix))
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err != nil {
		return nil, classify(ctx, args[0], err, stderr.String())
	}

	return stdout.Bytes(), nil
}

func classify(ctx context.Context, op string, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if errors.Is(err, exec.ErrNotFound) {
		return history.NewProviderError(history.ClassFatal, "svn "+op, err)
	}

	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		err = errors.New(stderr)
	}

	class := history.ClassTransient
	for _, m := range errorCodeRE.FindAllStringSubmatch(stderr, -1) {
		if fatalCodes[m[1]] {
			class = history.ClassFatal
			break
		}
	}

	return history.NewProviderError(class, "svn "+op, err)
}

func redact(args []string) []string {
	result := make([]string, len(args))
	copy(result, args)

	for i := range result {
		if result[i] == "--password" && i+1 < len(result) {
			result[i+1] = "***"
		}
	}

	return result
}
