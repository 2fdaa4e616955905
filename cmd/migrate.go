package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/transfer"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

// migrateCmd 建表，或在两个数据库之间迁移数据
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long: `Create or update the schema of the configured database.
Use "migrate run" to copy data from one database to another (e.g., SQLite to PostgreSQL).`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSchemaMigration(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

// migrateRunCmd 执行数据迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  image-hoster migrate run --from-sqlite ./data/images.db --to-postgres "host=localhost user=postgres password=secret dbname=imagehoster port=5432"

  # Migrate with overwrite strategy (replace existing data)
  image-hoster migrate run --from-sqlite ./data/images.db --to-postgres "..." --on-conflict=overwrite

  # Stop on conflict
  image-hoster migrate run --from-sqlite ./data/images.db --to-postgres "..." --on-conflict=error`,
	Run: func(cmd *cobra.Command, args []string) {
		fromType, _ := cmd.Flags().GetString("from-type")
		toType, _ := cmd.Flags().GetString("to-type")
		fromDSN, _ := cmd.Flags().GetString("from-dsn")
		toDSN, _ := cmd.Flags().GetString("to-dsn")
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		skipConfirm, _ := cmd.Flags().GetBool("yes")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if err := runMigration(fromType, toType, fromDSN, toDSN, fromSQLite, toPostgres, skipConfirm, batchSize, onConflict); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateRunCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateRunCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite, error")
}

// runSchemaMigration 对配置中的数据库执行自动迁移
func runSchemaMigration() error {
	config.InitConfig()
	cfg := config.Get()

	factory, err := database.NewFactory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = factory.Close() }()

	return factory.AutoMigrate()
}

// runMigration 执行数据库迁移
func runMigration(fromType, toType, fromDSN, toDSN, fromSQLite, toPostgres string, skipConfirm bool, batchSize int, onConflict string) error {
	strategy, err := transfer.ParseStrategy(onConflict)
	if err != nil {
		return err
	}

	// 处理快捷方式参数
	if fromSQLite != "" {
		fromType = "sqlite"
		fromDSN = fromSQLite
	}
	if toPostgres != "" {
		toType = "postgres"
		toDSN = toPostgres
	}

	if fromType == "" || toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if fromDSN == "" || toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn (or shortcuts) are required")
	}
	if fromType == toType && fromDSN == toDSN {
		return fmt.Errorf("source and target databases are the same")
	}

	log.Printf("Migrating from %s to %s", fromType, toType)
	log.Printf("Source: %s", maskDSN(fromDSN))
	log.Printf("Target: %s", maskDSN(toDSN))
	log.Printf("Conflict strategy: %s", strategy)

	source, err := openDatabase(fromType, fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	target, err := openDatabase(toType, toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer func() { _ = target.Close() }()

	if !skipConfirm {
		fmt.Println("\nWarning: This will migrate all data from source to target database.")
		fmt.Printf("Conflict resolution strategy: %s\n", strategy)
		fmt.Println("Existing data in target database may be affected.")
		fmt.Print("Do you want to continue? [y/N]: ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	stats, err := transfer.Copy(context.Background(), source.DB(), target.DB(), transfer.Options{
		BatchSize:  batchSize,
		OnConflict: strategy,
	})
	if stats != nil {
		printMigrateStats(stats)
	}
	if err != nil {
		return err
	}

	log.Println("Migration completed successfully!")
	return nil
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*database.GormProvider, error) {
	quiet := database.WithLogger(logger.Default.LogMode(logger.Silent))
	switch dbType {
	case "sqlite":
		return database.OpenSQLite(dsn, quiet)
	case "postgres", "postgresql":
		return database.OpenPostgres(dsn, quiet)
	}
	return nil, fmt.Errorf("unsupported database type: %s", dbType)
}

// maskDSN 隐藏敏感信息
func maskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:50] + "..."
	}
	return dsn
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats *transfer.Stats) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Migration Statistics")
	fmt.Println("========================================")
	for _, table := range stats.Tables {
		fmt.Printf("%-15s migrated: %d, skipped: %d\n", table.Table, table.Written, table.Skipped)
	}
	fmt.Printf("Total migrated:  %d\n", stats.Total())
	fmt.Println("========================================")
}
