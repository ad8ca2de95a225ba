package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/chainfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTransactionsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wallet TEXT NOT NULL,
		chain TEXT NOT NULL,
		tx_id TEXT NOT NULL,
		hash TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		received_quantity TEXT,
		received_currency TEXT,
		sent_quantity TEXT,
		sent_currency TEXT,
		fee_amount TEXT,
		fee_currency TEXT,
		notes TEXT,
		status TEXT,
		tx_type TEXT,
		link TEXT,
		tag TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(wallet, tx_id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTransactionsTable adds columns introduced after the first release to
// existing databases. New databases get the full schema from CREATE TABLE.
func migrateTransactionsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='transactions'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'transactions' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'transactions' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(transactions)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'transactions': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'transactions'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'transactions': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'transactions': %v", err)
		}
		return
	}

	if _, ok := columnExists["tag"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN tag TEXT")
		if err != nil {
			logger.L.Error("Error adding 'tag' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'tag' column to 'transactions' table")
		}
	}
	if _, ok := columnExists["link"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN link TEXT")
		if err != nil {
			logger.L.Error("Error adding 'link' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'link' column to 'transactions' table")
		}
	}
}
