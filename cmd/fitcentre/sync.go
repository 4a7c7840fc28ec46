// ABOUTME: CLI commands for Charm-based sync of the charm backend.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/fitcentre/internal/charm"
	"github.com/harperreed/fitcentre/internal/config"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync registry data across devices",
	Long: `Sync registry data across devices using Charm Cloud.

Applies to the charm backend (--backend charm or FITCENTRE_BACKEND=charm).
Data is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     fitcentre sync link

  2. On other devices, link with the same Charm account:
     fitcentre sync link

  3. Check sync status:
     fitcentre sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Data syncs automatically after each write when the charm backend is active.`,
	Annotations: map[string]string{skipStorage: ""},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.

Example:
  fitcentre sync link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Device linked to Charm")
		fmt.Fprintln(out, "Registry data on the charm backend will now sync automatically across devices.")

		client, err := charm.InitClient()
		if err != nil {
			yell.Fprintf(out, "⚠ Initial sync skipped: %v\n", err)
			return nil
		}
		defer client.Close()
		if err := client.Sync(); err != nil {
			yell.Fprintf(out, "⚠ Initial sync failed: %v\n", err)
		} else {
			success(out, "Initial sync complete")
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local registry data.
You can link again later with 'fitcentre sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Device unlinked from Charm")
		fmt.Fprintln(out, "Your local registry data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Charm account info
- Server
- Local record counts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg.GetBackend() != config.BackendCharm {
			yell.Fprintf(out, "Active backend is %s; sync applies to the charm backend.\n\n", cfg.GetBackend())
		}

		client, err := charm.InitClient()
		if err != nil {
			yell.Fprintln(out, "Charm client not initialized")
			fmt.Fprintln(out, "\nRun 'fitcentre sync link' to connect to Charm.")
			return nil
		}

		store, err := client.Store()
		if err != nil {
			client.Close()
			return err
		}
		defer store.Close()

		id, err := client.ID()
		if err != nil {
			yell.Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'fitcentre sync link' to connect to Charm.")
			return nil
		}

		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", charm.Host())
		if client.IsReadOnly() {
			yell.Fprintln(out, "Read-only: another process holds the database lock")
		}
		fmt.Fprintln(out)

		counts, err := countRecords(store)
		if err != nil {
			return err
		}

		success(out, "Connected to Charm")
		counts.print(out)
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and local data of the charm backend.

This is a DESTRUCTIVE operation. ALL data will be permanently deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local registry data.")
		if !confirm(cmd, "Type 'wipe' to confirm: ", "wipe") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		success(out, "Data wiped successfully")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Repairing fitcentre database...")
		result, err := kv.Repair(charm.DBName, force)

		if result.WalCheckpointed {
			success(out, "WAL checkpointed")
		}
		if result.ShmRemoved {
			success(out, "SHM file removed")
		}
		if result.IntegrityOK {
			success(out, "Integrity check passed")
		} else {
			removed(out, "Integrity check failed")
		}
		if result.Vacuumed {
			success(out, "Database vacuumed")
		}

		if err != nil {
			if !force {
				yell.Fprintln(out, "\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		success(out, "Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete all local data of the charm backend and restore from Charm Cloud.

This is a destructive operation. Use it to fix sync conflicts or to reset
a device to the cloud state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local registry data and restore from cloud.")
		if !confirm(cmd, "Continue? [y/N]: ", "y", "Y", "yes") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		client, err := charm.InitClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		success(out, "Local data reset and restored from cloud")
		return nil
	},
}

// batchWrites runs fn as one charm batch when backend is charm, so a bulk copy
// uploads once at the end instead of after every record.
func batchWrites(backend string, fn func() error) error {
	if backend != config.BackendCharm {
		return fn()
	}
	client, err := charm.InitClient()
	if err != nil {
		return err
	}
	return client.Batch(fn)
}

func runCharm(arg string) error {
	charmCmd := exec.Command("charm", arg)
	charmCmd.Stdin = os.Stdin
	charmCmd.Stdout = os.Stdout
	charmCmd.Stderr = os.Stderr
	return charmCmd.Run()
}

// confirm prompts on the command's output and reads one word from its input.
func confirm(cmd *cobra.Command, prompt string, accept ...string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	var answer string
	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
	for _, a := range accept {
		if answer == a {
			return true
		}
	}
	return false
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
