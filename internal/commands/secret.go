package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/qrseal/qrseal/internal/seal"
)

const (
	secretEnvVar     = "QR_SHARED_SECRET"
	secretHexEnvVar  = "QR_SHARED_SECRET_HEX"
	saltEnvVar       = "QR_KDF_SALT"
	iterationsEnvVar = "QR_KDF_ITERATIONS"
)

// readSecret is replaced in tests.
var readSecret = promptSecret

func keyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "Shared secret",
			Sources: cli.EnvVars(secretEnvVar),
		},
		&cli.StringFlag{
			Name:    "secret-hex",
			Usage:   "Shared secret, hex encoded",
			Sources: cli.EnvVars(secretHexEnvVar),
		},
		&cli.StringFlag{
			Name:    "salt",
			Usage:   "Key derivation salt",
			Value:   seal.DefaultSalt,
			Sources: cli.EnvVars(saltEnvVar),
		},
		&cli.IntFlag{
			Name:    "iterations",
			Usage:   "PBKDF2 iterations",
			Value:   seal.MinIterations,
			Sources: cli.EnvVars(iterationsEnvVar),
		},
	}
}

// loadKey resolves the secret from flags, env or the terminal and derives the key.
func loadKey(cmd *cli.Command) (*seal.Key, error) {
	secret, err := resolveSecret(cmd)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(secret)

	key, err := seal.NewKey(secret, seal.KDFParams{
		Salt:       []byte(cmd.String("salt")),
		Iterations: int(cmd.Int("iterations")),
	})
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func resolveSecret(cmd *cli.Command) ([]byte, error) {
	raw := cmd.String("secret")
	rawHex := cmd.String("secret-hex")
	switch {
	case raw != "" && rawHex != "":
		return nil, fmt.Errorf("only one of --secret or --secret-hex should be provided")
	case raw != "":
		return []byte(raw), nil
	case rawHex != "":
		b, err := hex.DecodeString(strings.TrimSpace(rawHex))
		if err != nil {
			return nil, fmt.Errorf("invalid --secret-hex: %w", err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("invalid --secret-hex: empty")
		}
		return b, nil
	}

	secret, err := readSecret("Shared secret: ")
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("shared secret is required")
	}
	return secret, nil
}

func promptSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	var secret []byte
	var err error
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
	} else {
		// STDIN may carry the payload; ask on the controlling terminal instead.
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("secret must be set via %s when STDIN is piped", secretEnvVar)
			}
			return nil, fmt.Errorf("cannot read secret: STDIN is piped and /dev/tty is not available. Set %s", secretEnvVar)
		}
		defer tty.Close()
		secret, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// zeroBytes overwrites b. seal.NewKey keeps its own copy of the secret.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
