package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gastos/internal/core"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var in core.ExpenseInput
	var amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one expense and print the reply",
		Long: `Add one expense and print the same reply the agregar_gasto tool returns.
Validation failures are printed as text starting with "Error" and still exit 0.`,
		Example: `  gastos add --fecha 2024-01-15 --categoria Comida --cantidad 12.5 --metodo-de-pago Efectivo`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := opts.open(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			in.Amount = amount
			fmt.Fprintln(cmd.OutOrStdout(), sess.result.Service.AddExpenseReply(cmd.Context(), in))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Date, "fecha", "", "Date as YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Category, "categoria", "", "Category")
	cmd.Flags().StringVar(&amount, "cantidad", "", "Amount, zero or more")
	cmd.Flags().StringVar(&in.PaymentMethod, "metodo-de-pago", "", "Payment method")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every expense as the resource://gastos JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := opts.open(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			fmt.Fprintln(cmd.OutOrStdout(), sess.result.Service.ExpensesReply(cmd.Context()))
			return nil
		},
	}
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt_agregar_gasto text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := opts.open(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			fmt.Fprintln(cmd.OutOrStdout(), sess.result.Service.PromptReply(cmd.Context()))
			return nil
		},
	}
}
