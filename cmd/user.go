package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/internal/app"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/spf13/cobra"
)

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

// userCreateCmd 创建用户
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Create a user account. The password must contain at least one letter,
one number and one special character.

Example:
  image-hoster user create --username alice --password 's3cret!'`,
	Run: func(cmd *cobra.Command, args []string) {
		form := auth.RegistrationForm{}
		form.Username, _ = cmd.Flags().GetString("username")
		form.Password, _ = cmd.Flags().GetString("password")
		form.FullName, _ = cmd.Flags().GetString("full-name")
		form.EmailAddress, _ = cmd.Flags().GetString("email")
		form.MobileNumber, _ = cmd.Flags().GetString("mobile")

		if err := runUserCreate(form); err != nil {
			log.Fatalf("Create user failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringP("username", "u", "", "Username (required)")
	userCreateCmd.Flags().StringP("password", "p", "", "Password (required)")
	userCreateCmd.Flags().String("full-name", "", "Full name")
	userCreateCmd.Flags().String("email", "", "Email address")
	userCreateCmd.Flags().String("mobile", "", "Mobile number")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")
}

func runUserCreate(form auth.RegistrationForm) error {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
		return err
	}
	if err := container.InitServices(); err != nil {
		return err
	}

	user, err := container.GetAuthService().Register(context.Background(), form)
	if err != nil {
		var policyErr *auth.PasswordPolicyError
		if errors.As(err, &policyErr) {
			return fmt.Errorf("weak password: %w", err)
		}
		return err
	}

	fmt.Printf("User %s created (id=%d)\n", user.Username, user.ID)
	return nil
}
