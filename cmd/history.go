package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"gosterim-cli/store"
	"gosterim-cli/ticket"
)

var errNoTickets = errors.New("no tickets issued yet")

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recently issued tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := store.LoadRecentTickets()
			if err != nil {
				return err
			}
			if len(tickets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), errNoTickets.Error())
				return nil
			}
			ticket.History(cmd.OutOrStdout(), tickets)
			return nil
		},
	}
}

func newReprintCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reprint [transaction-id]",
		Short: "Export the QR image of a previous ticket again",
		Long:  `Export the QR image of a ticket from the history. Without a transaction id you pick the ticket from a list.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			tickets, err := store.LoadRecentTickets()
			if err != nil {
				return err
			}
			if len(tickets) == 0 {
				return errNoTickets
			}

			var chosen store.RecentTicket
			if len(args) == 1 {
				found, ok := findTicket(tickets, args[0])
				if !ok {
					return fmt.Errorf("no ticket with transaction id %q", args[0])
				}
				chosen = found
			} else {
				chosen, err = promptTicket(tickets)
				if err != nil {
					return err
				}
			}

			data, err := ticket.FromRecent(chosen)
			if err != nil {
				return err
			}
			path, err := ticket.WritePNG(cfg.TicketDir, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func findTicket(tickets []store.RecentTicket, transactionID string) (store.RecentTicket, bool) {
	for _, t := range tickets {
		if t.TransactionID == transactionID {
			return t, true
		}
	}
	return store.RecentTicket{}, false
}

func ticketLabel(t store.RecentTicket) string {
	return fmt.Sprintf("%s  %s %s  %s", t.TransactionID, t.Movie, t.Session, t.IssuedAt.Local().Format("2006-01-02 15:04"))
}

func promptTicket(tickets []store.RecentTicket) (store.RecentTicket, error) {
	byLabel := make(map[string]store.RecentTicket, len(tickets))
	for _, t := range tickets {
		byLabel[ticketLabel(t)] = t
	}
	labels := maps.Keys(byLabel)
	sort.Strings(labels)

	selectTicket := promptui.Select{
		Label: "Select Ticket",
		Items: labels,
		Size:  10,
	}
	_, label, err := selectTicket.Run()
	if err != nil {
		return store.RecentTicket{}, err
	}
	chosen, ok := byLabel[label]
	if !ok {
		return store.RecentTicket{}, errors.New("invalid ticket")
	}
	return chosen, nil
}
