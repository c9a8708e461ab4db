package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wefthq/weft/pkg/envelope"
)

// dataKeyGenerateCmd represents the data-key > generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a master encryption key",
	Long: `
Generate a master encryption key

Use this command to generate a new Base64-encoded 256 bit key-encryption
key. Once generated, this key should be placed into the environment of any
process that needs to read or write integration credentials. It wraps the
per-row data keys under which credential values are stored in the database.

Example:

$ export WEFT_MASTER_KEY="$(weftctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		bytes, _ := envelope.RandomBytes(envelope.KeySize)
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(bytes))
	},
}

func init() {
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
