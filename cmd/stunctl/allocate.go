package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kuuji/stunkit/turnrest"
)

func newTurnAllocateCmd(cfgPath *string) *cobra.Command {
	var lifetime time.Duration

	cmd := &cobra.Command{
		Use:   "turn-allocate",
		Short: "Mint TURN REST API credentials for a fresh peer id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("no TURN REST secret configured in [auth]")
			}

			peerID := uuid.NewString()
			username, password := turnrest.GenerateCredentials(cfg.Auth.Secret, peerID, lifetime)

			realm := cfg.Auth.Realm
			if realm == "" {
				realm = turnrest.DefaultRealm
			}
			key := turnrest.LongTermKey(username, realm, password)

			fmt.Printf("peer-id:  %s\n", peerID)
			fmt.Printf("username: %s\n", username)
			fmt.Printf("password: %s\n", password)
			fmt.Printf("realm:    %s\n", realm)
			fmt.Printf("auth-key: %x\n", key)
			return nil
		},
	}

	cmd.Flags().DurationVar(&lifetime, "lifetime", turnrest.DefaultLifetime, "credential validity period")
	return cmd
}
