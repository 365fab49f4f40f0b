package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bananagen/bananagen/internal/types"
)

// Account flag names
const (
	flagAccountID       = "id"
	flagAccountName     = "name"
	flagAccountAPIKey   = "api-key"
	flagAccountType     = "type"
	flagAccountProxy    = "proxy-url"
	flagAccountUA       = "user-agent"
	flagAccountLimit    = "concurrency-limit"
	flagAccountPriority = "priority"
	flagAccountStatus   = "status"
)

func init() {
	accountsCmd.AddCommand(listAccountsCmd)
	accountsCmd.AddCommand(createAccountCmd)
	accountsCmd.AddCommand(setAccountStatusCmd)

	createAccountCmd.Flags().StringP(flagAccountName, "n", "", "Account display name")
	createAccountCmd.Flags().StringP(flagAccountAPIKey, "k", "", "Provider access token")
	createAccountCmd.Flags().StringP(flagAccountType, "t", "", "Account type (unlimited or pay_as_you_go)")
	createAccountCmd.Flags().String(flagAccountProxy, "", "Egress proxy URL")
	createAccountCmd.Flags().String(flagAccountUA, "", "User agent override")
	createAccountCmd.Flags().Int(flagAccountLimit, 0, "Concurrency limit for unlimited accounts")
	createAccountCmd.Flags().Int(flagAccountPriority, 0, "Selection priority (ascending = tried first)")
	_ = createAccountCmd.MarkFlagRequired(flagAccountName)
	_ = createAccountCmd.MarkFlagRequired(flagAccountAPIKey)
	_ = createAccountCmd.MarkFlagRequired(flagAccountType)

	setAccountStatusCmd.Flags().UintP(flagAccountID, "i", 0, "Account ID")
	setAccountStatusCmd.Flags().String(flagAccountStatus, "", "New status (active or inactive)")
	_ = setAccountStatusCmd.MarkFlagRequired(flagAccountID)
	_ = setAccountStatusCmd.MarkFlagRequired(flagAccountStatus)
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Administer provider accounts",
}

var listAccountsCmd = &cobra.Command{
	Use:   "list",
	Short: "List provider accounts",
	RunE: func(_ *cobra.Command, _ []string) error {
		accounts, err := apiClient.ListAccounts(context.Background())
		if err != nil {
			return fmt.Errorf("error listing accounts: %w", err)
		}
		return printJSON(accounts)
	},
}

var createAccountCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a provider account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString(flagAccountName)
		apiKey, _ := cmd.Flags().GetString(flagAccountAPIKey)
		accountType, _ := cmd.Flags().GetString(flagAccountType)
		proxyURL, _ := cmd.Flags().GetString(flagAccountProxy)
		userAgent, _ := cmd.Flags().GetString(flagAccountUA)
		limit, _ := cmd.Flags().GetInt(flagAccountLimit)
		priority, _ := cmd.Flags().GetInt(flagAccountPriority)

		req := types.CreateAccountRequest{
			Name:             name,
			APIKey:           apiKey,
			Type:             accountType,
			ConcurrencyLimit: limit,
			Priority:         priority,
		}
		if proxyURL != "" {
			req.ProxyURL = &proxyURL
		}
		if userAgent != "" {
			req.UserAgent = &userAgent
		}

		account, err := apiClient.CreateAccount(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error creating account: %w", err)
		}
		return printJSON(account)
	},
}

var setAccountStatusCmd = &cobra.Command{
	Use:   "set-status",
	Short: "Activate or deactivate a provider account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint(flagAccountID)
		status, _ := cmd.Flags().GetString(flagAccountStatus)

		if err := apiClient.UpdateAccountStatus(context.Background(), id, status); err != nil {
			return fmt.Errorf("error updating account status: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}
