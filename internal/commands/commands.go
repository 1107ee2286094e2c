// Package commands implements the qrseal command line.
package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/qrseal/qrseal/internal/logging"
	"github.com/qrseal/qrseal/internal/qr"
	"github.com/qrseal/qrseal/internal/seal"
)

// ErrInvalidPayload is the only failure open reports for a rejected payload.
var ErrInvalidPayload = errors.New("invalid payload")

const maxInputBytes = 64 << 10

// NewApp builds the root command.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "qrseal",
		Usage: "Seal contact details into tamper-evident QR payloads",
		Commands: []*cli.Command{
			SealCommand(),
			OpenCommand(),
			KeygenCommand(),
		},
	}
}

// SealCommand creates the seal command.
func SealCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "Name to seal",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "phone",
			Usage:    "Phone number to seal",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Produce a signed but unencrypted payload",
		},
		&cli.StringFlag{
			Name:  "png",
			Usage: "Also write the payload as a QR code PNG to this path",
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "PNG edge length in pixels",
			Value: qr.DefaultImageSize,
		},
	}
	return &cli.Command{
		Name:   "seal",
		Usage:  "Seal a name and phone number",
		Flags:  append(flags, keyFlags()...),
		Action: runSealCommand,
	}
}

func runSealCommand(ctx context.Context, cmd *cli.Command) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	fields := seal.Fields{Name: cmd.String("name"), Phone: cmd.String("phone")}

	var content string
	if cmd.Bool("plain") {
		p, err := svc.Sign(ctx, fields)
		if err != nil {
			return err
		}
		content = p.String()
	} else {
		p, err := svc.Seal(ctx, fields)
		if err != nil {
			return err
		}
		content = p.String()
	}

	if path := cmd.String("png"); path != "" {
		png, err := svc.Render(ctx, content, int(cmd.Int("size")))
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
	}

	fmt.Fprintln(cmd.Root().Writer, content)
	return nil
}

// OpenCommand creates the open command.
func OpenCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "payload",
			Usage: "Payload JSON",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Path to a file holding the payload JSON",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Expect a signed but unencrypted payload",
		},
	}
	return &cli.Command{
		Name:      "open",
		Usage:     "Verify a payload and print its fields",
		ArgsUsage: "(reads STDIN when neither --payload nor --file is given)",
		Flags:     append(flags, keyFlags()...),
		Action:    runOpenCommand,
	}
}

func runOpenCommand(ctx context.Context, cmd *cli.Command) error {
	raw, err := readPayload(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cmd)
	if err != nil {
		return err
	}

	var fields seal.Fields
	if cmd.Bool("plain") {
		fields, err = svc.OpenSigned(ctx, raw)
	} else {
		fields, err = svc.Open(ctx, raw)
	}
	if err != nil {
		return ErrInvalidPayload
	}

	out, err := json.MarshalIndent(qr.FieldsResponse{Name: fields.Name, Phone: fields.Phone}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, string(out))
	return nil
}

func readPayload(cmd *cli.Command) ([]byte, error) {
	payload := cmd.String("payload")
	path := cmd.String("file")
	switch {
	case payload != "" && path != "":
		return nil, fmt.Errorf("only one of --payload or --file should be provided")
	case payload != "":
		return []byte(payload), nil
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return b, nil
	}

	r := cmd.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	b, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return b, nil
}

// KeygenCommand creates the keygen command.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Print a random hex secret for QR_SHARED_SECRET_HEX",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "bytes",
				Usage: "Secret length in bytes",
				Value: 32,
			},
		},
		Action: runKeygenCommand,
	}
}

func runKeygenCommand(_ context.Context, cmd *cli.Command) error {
	n := int(cmd.Int("bytes"))
	if n < 16 || n > 1024 {
		return fmt.Errorf("--bytes must be between 16 and 1024")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("read random: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, hex.EncodeToString(b))
	return nil
}

func newService(cmd *cli.Command) (*qr.Service, error) {
	key, err := loadKey(cmd)
	if err != nil {
		return nil, err
	}
	// The CLI keeps no audit trail.
	return qr.NewService(seal.NewSealer(key), seal.NewVerifier(key), nil, logging.Discard()), nil
}
