// Path command prints the resolved directories.
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved configuration and data locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}

		locations := map[string]string{
			"configDir":  configDir,
			"dataDir":    dataDir,
			"database":   filepath.Join(dataDir, sqlite.DBFileName),
			"localStore": kvstore.LocalStoreDir(dataDir),
		}
		if flagJSON {
			out, err := json.MarshalIndent(locations, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Println("config:     ", locations["configDir"])
		fmt.Println("data:       ", locations["dataDir"])
		fmt.Println("database:   ", locations["database"])
		fmt.Println("local store:", locations["localStore"])
		return nil
	},
}
