package auth

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLConfig содержит настройки подключения к серверу MySQL/MariaDB.
type MySQLConfig struct {
	Host     string // например, localhost
	Port     int    // например, 3306
	Database string // например, worldcore
	Username string // пользователь БД
	Password string // пароль БД
}

// MySQLRepository реализует Repository поверх таблицы auth(name, secret)
// (spec.md §6).
type MySQLRepository struct {
	db *sql.DB
}

// NewMySQLRepository открывает подключение и создаёт таблицу auth, если её нет.
func NewMySQLRepository(cfg MySQLConfig) (*MySQLRepository, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	if cfg.Database == "" {
		cfg.Database = "worldcore"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть подключение к MySQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MySQL: %w", err)
	}

	repo := &MySQLRepository{db: db}
	if err := repo.createTable(); err != nil {
		return nil, fmt.Errorf("не удалось создать таблицу auth: %w", err)
	}
	return repo, nil
}

func (m *MySQLRepository) createTable() error {
	const createAuthTable = `
	CREATE TABLE IF NOT EXISTS auth (
		name VARCHAR(64) NOT NULL UNIQUE,
		secret VARCHAR(255) NOT NULL,
		INDEX idx_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`

	_, err := m.db.Exec(createAuthTable)
	return err
}

// Register implements Repository.
func (m *MySQLRepository) Register(name string, secret [4]uint32) (bool, error) {
	hash, err := hashSecret(secret)
	if err != nil {
		return false, err
	}

	_, err = m.db.Exec(`INSERT INTO auth (name, secret) VALUES (?, ?)`, name, hash)
	if err != nil {
		// Дублирование имени — не ошибка вызова, просто отказ в регистрации.
		if strings.Contains(err.Error(), "Duplicate entry") {
			return false, nil
		}
		return false, fmt.Errorf("ошибка при создании аккаунта: %w", err)
	}
	return true, nil
}

// Login implements Repository.
func (m *MySQLRepository) Login(name string, secret [4]uint32) (bool, error) {
	var stored string
	err := m.db.QueryRow(`SELECT secret FROM auth WHERE name = ?`, name).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка при получении аккаунта: %w", err)
	}

	ok, deprecated, err := verifySecret(stored, secret)
	if err != nil || !ok {
		return false, err
	}

	if deprecated {
		if rehashed, err := hashSecret(secret); err == nil {
			_, _ = m.db.Exec(`UPDATE auth SET secret = ? WHERE name = ?`, rehashed, name)
		}
	}

	return true, nil
}

// Close закрывает подключение к БД.
func (m *MySQLRepository) Close() error {
	return m.db.Close()
}
