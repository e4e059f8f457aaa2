package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tonhe/speedlog/internal/vault"
)

const loginUsage = "Usage: speedlog login <list|add|remove|passwd>"

func loginCmd(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, loginUsage)
		return 1
	}

	var err error
	switch args[0] {
	case "list":
		err = loginList()
	case "add":
		err = loginAdd()
	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: speedlog login remove NAME")
			return 1
		}
		err = loginRemove(args[1])
	case "passwd":
		err = loginPasswd()
	default:
		fmt.Fprintf(os.Stderr, "Unknown login command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, loginUsage)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loginList() error {
	store, err := openVault()
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return fmt.Errorf("listing logins: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No logins saved.")
		return nil
	}

	cfg := loadOrDefaultConfig()
	for _, s := range summaries {
		marker := " "
		if s.Name == cfg.Profile {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-20s  %s", marker, s.Name, s.Server)
		if s.HasAuth {
			line += fmt.Sprintf("  user=%s", s.Username)
		}
		fmt.Println(line)
	}
	return nil
}

func loginAdd() error {
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	p := vault.Profile{
		Name:   prompt("Login name: "),
		Server: prompt("Server URL (e.g. http://localhost:8000): "),
	}
	p.Username = prompt("Username (empty if auth is disabled): ")
	if p.Username != "" {
		password, err := readSecret("Password: ")
		if err != nil {
			return err
		}
		p.Password = string(password)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	store, err := openVault()
	if err != nil {
		return err
	}
	if err := store.Add(p); err != nil {
		return fmt.Errorf("adding login: %w", err)
	}
	fmt.Printf("Login %q saved.\n", p.Name)

	cfg := loadOrDefaultConfig()
	if cfg.Profile == "" {
		cfg.Profile = p.Name
		cfg.Server = p.Server
		if err := saveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("Login %q set as default.\n", p.Name)
	}
	return nil
}

func loginRemove(name string) error {
	store, err := openVault()
	if err != nil {
		return err
	}
	if err := store.Remove(name); err != nil {
		return fmt.Errorf("removing login: %w", err)
	}

	cfg := loadOrDefaultConfig()
	if cfg.Profile == name {
		cfg.Profile = ""
		if err := saveConfig(cfg); err != nil {
			return err
		}
	}
	fmt.Printf("Login %q removed.\n", name)
	return nil
}

func loginPasswd() error {
	store, err := openVault()
	if err != nil {
		return err
	}

	password, err := readSecret("New master password (empty for none): ")
	if err != nil {
		return err
	}
	again, err := readSecret("Repeat new master password: ")
	if err != nil {
		return err
	}
	if err := changeVaultPassword(store, password, again); err != nil {
		return err
	}
	fmt.Println("Master password changed.")
	return nil
}

// changeVaultPassword re-keys store once both entries agree.
func changeVaultPassword(store *vault.FileStore, password, again []byte) error {
	if !bytes.Equal(password, again) {
		return errors.New("passwords do not match")
	}
	if err := store.ChangePassword(password); err != nil {
		return fmt.Errorf("changing master password: %w", err)
	}
	return nil
}
