package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/andrei-cloud/go_arv/internal/commands/cli"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

func main() {
	root, err := cli.NewRootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		// A failed check exits with the TPM vendor status of its result.
		var verr arv.VerifyError
		if errors.As(err, &verr) {
			os.Exit(int(arv.TpmvStatusFromResult(arv.Failure(verr))))
		}
		os.Exit(1)
	}
}
