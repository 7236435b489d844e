package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var subscriptionOutput string

var subscriptionCmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"s", "sub"},
	Short:   "Configure logsh subscriptions",
}

var subscriptionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions",
	Long: `List the subscriptions available to the connection.

The stored subscription set is refreshed from the server.`,
	Args: cobra.NoArgs,
	RunE: runSubscriptionList,
}

var subscriptionDefaultCmd = &cobra.Command{
	Use:     "default NAME|ID",
	Aliases: []string{"d"},
	Short:   "Set the default user subscription",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubscriptionDefault,
}

func init() {
	subscriptionListCmd.Flags().StringVarP(&subscriptionOutput, "output", "o", "table",
		"output format (table, markdown, json, json-pretty, csv)")

	subscriptionCmd.AddCommand(subscriptionListCmd)
	subscriptionCmd.AddCommand(subscriptionDefaultCmd)
	rootCmd.AddCommand(subscriptionCmd)
}

// subscriptionRecord is the JSON form of a listed subscription.
type subscriptionRecord struct {
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	IsDefault   bool     `json:"is_default"`
	Permissions []string `json:"permissions"`
}

func runSubscriptionList(cmd *cobra.Command, _ []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}
	mode, err := parseOutputMode(subscriptionOutput)
	if err != nil {
		return err
	}

	subs, err := connectionService.Subscriptions(cmd.Context(), connectionFlag)
	if err != nil {
		return err
	}
	conn, err := connectionService.Resolve(cmd.Context(), connectionFlag)
	if err != nil {
		return err
	}
	defaultName, _, _ := conn.Connection.ResolveDefaultSubscription()

	records := make([]subscriptionRecord, 0, len(subs))
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		isDefault := s.AccountName == defaultName
		rows = append(rows, []string{s.AccountName, s.AccountID.String(), yesNo(isDefault)})
		records = append(records, subscriptionRecord{
			Name:        s.AccountName,
			ID:          s.AccountID.String(),
			IsDefault:   isDefault,
			Permissions: s.Permissions,
		})
	}

	return listing{
		Headers: []string{"Name", "ID", "Default"},
		Rows:    rows,
		Records: records,
	}.write(cmd.OutOrStdout(), mode)
}

func runSubscriptionDefault(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	name, err := connectionService.SetDefaultSubscription(cmd.Context(), connectionFlag, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default subscription set to %s.\n", name)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
