package db

import (
	"fmt"
	"time"

	"soundwave/config"
	"soundwave/logger"
	"soundwave/model"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MySQLDSN builds the DSN for the mysql driver.
func MySQLDSN(cfg *config.Config) string {
	c := mysqldriver.NewConfig()
	c.User = cfg.DBUser
	c.Passwd = cfg.DBPassword
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)
	c.DBName = cfg.DBName
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// PostgresDSN builds the DSN for the pgx-backed postgres driver.
func PostgresDSN(cfg *config.Config) string {
	port := cfg.DBPort
	if port == "" || port == "3306" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, port, cfg.DBUser, cfg.DBPassword, cfg.DBName)
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil
	case config.DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("store driver %q is not a relational driver", cfg.StoreDriver)
	}
}

// ConnectGormDB 建立 GORM 数据库连接并迁移 songs 表
func ConnectGormDB(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenGorm(d, gormlogger.Warn)
}

// OpenGorm opens a gorm handle on the given dialector and auto-migrates the
// song schema.
func OpenGorm(d gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	gdb, err := gorm.Open(d, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	// 获取底层的 sql.DB 并配置连接池
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(&model.Song{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}

	logger.Info("Connected to relational store", logger.String("dialect", d.Name()))
	return gdb, nil
}

// OpenSQLiteMemory opens a private in-memory sqlite database. Used by tests
// and by `server --store sqlite --sqlite-path :memory:`.
func OpenSQLiteMemory(name string) (*gorm.DB, error) {
	return OpenGorm(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), gormlogger.Silent)
}

// CloseGormDB 关闭 GORM 数据库连接
func CloseGormDB(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
