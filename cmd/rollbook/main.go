package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"rollbook/internal/app"
	"rollbook/internal/config"
	"rollbook/internal/encryption"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "BackupNow", "Run").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
// When confirm is true the passphrase is read twice and must match.
func promptPassphrase(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return string(first), nil
}

// fileIsEncrypted peeks at the start of the file for the encryption header.
func fileIsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 32)
	n, _ := f.Read(header)
	return encryption.IsEncrypted(header[:n]), nil
}

var rootCmd = &cobra.Command{
	Use:   "rollbook",
	Short: "Attendance register backup tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Dataset:      %s\n", cfg.DatasetPath)
		fmt.Printf("Store:        %s\n", cfg.Store.Type)
		fmt.Printf("Drive:        %s\n", cfg.Drive.Type)
		fmt.Printf("Interval:     %dh\n", cfg.Backup.IntervalHours)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups",
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Create a backup immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupNow")
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.BackupNow(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Backed up %d students, %d subjects, %d attendance records\n",
			len(snap.Students), len(snap.Subjects), len(snap.AttendanceRecords))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retained backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")

		a, err := newApp("ListBackups")
		if err != nil {
			return err
		}
		defer a.Close()

		if remote {
			backups := a.ListRemote(cmd.Context())
			if len(backups) == 0 {
				fmt.Println("No remote backups (is the remote connected?).")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%s  %s  %8s  %s\n", b.Date, b.Name, b.SizeDisplay, b.ID)
			}
			return nil
		}

		backups, err := a.ListLocal()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No local backups.")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %s  %d students, %d records\n",
				b.DateKey,
				b.Snapshot.CreatedAt.Format("2006-01-02 15:04:05"),
				len(b.Snapshot.Students),
				len(b.Snapshot.AttendanceRecords),
			)
		}
		return nil
	},
}

var backupExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a snapshot to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		var passphrase string
		if encrypt {
			var err error
			passphrase, err = promptPassphrase(true)
			if err != nil {
				return err
			}
		}

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export(args[0], passphrase); err != nil {
			return err
		}

		fmt.Printf("Exported snapshot to %s\n", args[0])
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a snapshot file as the live dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, err := fileIsEncrypted(args[0])
		if err != nil {
			return err
		}

		var passphrase string
		if encrypted {
			passphrase, err = promptPassphrase(false)
			if err != nil {
				return err
			}
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Import(args[0], passphrase); err != nil {
			return err
		}

		fmt.Printf("Imported snapshot from %s\n", args[0])
		return nil
	},
	Args: cobra.ExactArgs(1),
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the dataset from a backup",
}

var restoreLocalCmd = &cobra.Command{
	Use:   "local DATE",
	Short: "Restore from a local backup (DATE is YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreLocal")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RestoreLocal(args[0]); err != nil {
			return err
		}

		fmt.Printf("Restored dataset from local backup %s\n", args[0])
		return nil
	},
}

var restoreRemoteCmd = &cobra.Command{
	Use:   "remote FILE_ID",
	Short: "Restore from a remote backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreRemote")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RestoreRemote(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Restored dataset from remote backup %s\n", args[0])
		return nil
	},
}

// remote command
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the remote drive session",
}

var remoteConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Sign in to the remote drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Connect")
		if err != nil {
			return err
		}
		defer a.Close()

		account, err := a.Connect(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Connected as %s\n", account.Name)
		return nil
	},
}

var remoteDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Sign out of the remote drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Disconnect")
		if err != nil {
			return err
		}
		defer a.Close()

		a.Disconnect(cmd.Context())
		fmt.Println("Disconnected.")
		return nil
	},
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remote session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoteStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		account := a.RemoteAccount()
		if account == nil {
			fmt.Println("Not connected.")
			return nil
		}

		fmt.Printf("Connected as %s (%s)\n", account.Name, account.ID)
		return nil
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the automatic backup scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Run")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Println("Automatic backup running. Press Ctrl-C to stop.")
		return a.Run(ctx)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// backup subcommands
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupListCmd)
	backupListCmd.Flags().BoolP("remote", "r", false, "List remote backups instead of local")
	backupCmd.AddCommand(backupExportCmd)
	backupExportCmd.Flags().BoolP("encrypt", "e", false, "Encrypt the export with a passphrase")
	backupCmd.AddCommand(backupImportCmd)

	// restore subcommands
	restoreCmd.AddCommand(restoreLocalCmd)
	restoreCmd.AddCommand(restoreRemoteCmd)

	// remote subcommands
	remoteCmd.AddCommand(remoteConnectCmd)
	remoteCmd.AddCommand(remoteDisconnectCmd)
	remoteCmd.AddCommand(remoteStatusCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(runCmd)
}
