package leaderboard

import (
	"database/sql"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect holds the SQL that differs between the supported databases.
type Dialect struct {
	Name       string
	DriverName string
	Schema     []string
	InsertGame string
}

var MySQL = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS t_games (
			pk_game INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS t_players (
			pk_player INT AUTO_INCREMENT PRIMARY KEY,
			pseudo VARCHAR(50) NOT NULL,
			INDEX idx_players_pseudo (pseudo)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS t_scores (
			pk_score INT AUTO_INCREMENT PRIMARY KEY,
			score INT NOT NULL,
			pseudo VARCHAR(50) NOT NULL,
			fk_player INT NOT NULL,
			fk_game INT NOT NULL,
			FOREIGN KEY (fk_player) REFERENCES t_players(pk_player),
			FOREIGN KEY (fk_game) REFERENCES t_games(pk_game)
		) ENGINE=InnoDB`,
	},
	InsertGame: "INSERT IGNORE INTO t_games (name) VALUES (?)",
}

var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS t_games (
			pk_game INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS t_players (
			pk_player INTEGER PRIMARY KEY AUTOINCREMENT,
			pseudo TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_pseudo ON t_players (pseudo)`,
		`CREATE TABLE IF NOT EXISTS t_scores (
			pk_score INTEGER PRIMARY KEY AUTOINCREMENT,
			score INTEGER NOT NULL,
			pseudo TEXT NOT NULL,
			fk_player INTEGER NOT NULL REFERENCES t_players(pk_player),
			fk_game INTEGER NOT NULL REFERENCES t_games(pk_game)
		)`,
	},
	InsertGame: "INSERT OR IGNORE INTO t_games (name) VALUES (?)",
}

func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("leaderboard: unknown database driver %q (mysql, sqlite)", name)
	}
}

// MySQLDSN builds a DSN from the DB_HOST, DB_USER, DB_PASSWORD and DB_NAME settings.
func MySQLDSN(host, user, password, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = host
	if _, _, err := net.SplitHostPort(host); err != nil {
		cfg.Addr = net.JoinHostPort(host, "3306")
	}
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = dbName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// SQLiteDSN opens path (or ":memory:") with foreign keys enforced.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// OpenDB opens and pings the database.
func OpenDB(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open %s: %w", d.Name, err)
	}

	if d.Name == SQLite.Name {
		// one writer; also keeps a :memory: database alive on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leaderboard: ping %s: %w", d.Name, err)
	}
	return db, nil
}
