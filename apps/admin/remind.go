package main

import (
	"context"
	"encoding/json"
)

func (cli *commandLine) remind() error {
	res, err := cli.runner.Run(context.Background(), nowFunc())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.output())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
