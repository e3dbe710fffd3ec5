package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"screening_notifier/internal/signer"
)

var signFlags struct {
	body      string
	multipart bool
}

var signCmd = &cobra.Command{
	Use:   "sign URL",
	Short: "Print signature headers for a request",
	Long:  "Print the x-timestamp and x-signature headers for URL using CGV_SECRET_KEY.\nUseful for replaying requests with curl.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSign,
}

func init() {
	f := signCmd.Flags()
	f.StringVar(&signFlags.body, "body", "", "text request body")
	f.BoolVar(&signFlags.multipart, "multipart", false, "request carries a multipart/form-data body")
}

func runSign(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	s, err := signer.New(os.Getenv("CGV_SECRET_KEY"))
	if err != nil {
		return err
	}

	var body signer.Body
	switch {
	case signFlags.multipart:
		body = signer.Multipart{}
	case signFlags.body != "":
		body = signer.Text(signFlags.body)
	}

	sig, err := s.Sign(args[0], body)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", signer.HeaderTimestamp, sig.Timestamp)
	fmt.Fprintf(out, "%s: %s\n", signer.HeaderSignature, sig.Value)
	return nil
}
