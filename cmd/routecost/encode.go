package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

const absentBuffer = "absent"

func newEncodeCmd(configPath *string) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "encode name=value...",
		Short: "Encode tags into a buffer and print it as hex",
		Long: `Encode maps name=value tags onto the context's vocabulary and prints the
encoded buffer in hex, or "absent" when no tag is set. Values outside the
vocabulary are encoded as unknown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := parseTags(args)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), *configPath, &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(cmd.Context()) }()

			reg, err := s.registry()
			if err != nil {
				return err
			}
			vec, err := vectorOf(reg, tags, true)
			if err != nil {
				return err
			}
			cd, err := s.codec()
			if err != nil {
				return err
			}
			buf, err := cd.Encode(vec)
			if err != nil {
				return err
			}

			out := absentBuffer
			if buf != nil {
				out = hex.EncodeToString(buf)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	flags.AddFlags(cmd.Flags())
	return cmd
}
