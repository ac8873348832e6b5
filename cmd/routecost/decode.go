package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDecodeCmd(configPath *string) *cobra.Command {
	var (
		flags   sourceFlags
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode a hex buffer and print its tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf []byte
			if args[0] != absentBuffer {
				var err error
				if buf, err = hex.DecodeString(args[0]); err != nil {
					return fmt.Errorf("decode: %w", err)
				}
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
			cd, err := s.codec()
			if err != nil {
				return err
			}
			vec := reg.NewIndexVector()
			if err := cd.Decode(vec, reverse, buf); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(reg.Describe(vec)))
			return err
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&reverse, "reverse", false, "decode as seen in reverse direction")
	return cmd
}
