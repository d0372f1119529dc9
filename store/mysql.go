package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
)

const (
	createMessagesSQL = "CREATE TABLE IF NOT EXISTS messages (" +
		"seq BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY," +
		"room VARCHAR(64) NOT NULL," +
		"received DATETIME(3) NOT NULL," +
		"nick VARCHAR(64) NOT NULL," +
		"recipient VARCHAR(64) NOT NULL DEFAULT ''," +
		"body TEXT NOT NULL," +
		"payload JSON NOT NULL," +
		"KEY room_seq (room, seq)," +
		"KEY received (received)" +
		") DEFAULT CHARSET=utf8mb4"
	insertMessageSQL = "INSERT INTO messages (room,received,nick,recipient,body,payload) VALUES (?,?,?,?,?,?)"
	recentSQL        = "SELECT seq,received,payload FROM messages WHERE room=? ORDER BY seq DESC LIMIT ?"
	cleanMessagesSQL = "DELETE FROM messages WHERE received <= ?"
)

// mysqlArchive implements IArchive on a shared MySQL table.
type mysqlArchive struct {
	*sql.DB
}

func NewMySQLArchive(ctx context.Context, db *sql.DB) (*mysqlArchive, error) {
	if _, err := db.ExecContext(ctx, createMessagesSQL); err != nil {
		return nil, err
	}
	return &mysqlArchive{db}, nil
}

// ParseDSN validates dsn and forces the options the archive relies on.
func ParseDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

func (s *mysqlArchive) withTx(ctx context.Context, exec func(ctx context.Context, tx *sql.Tx) error, opts ...*sql.TxOptions) error {
	var txOpts *sql.TxOptions
	if len(opts) == 0 {
		txOpts = &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  false,
		}
	} else {
		txOpts = opts[0]
	}
	tx, err := s.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	if err := exec(ctx, tx); err != nil {
		err2 := tx.Rollback()
		if err2 != nil {
			glog.Errorf("failed to rollback: %v", err)
		}
		return err
	}

	return tx.Commit()
}

func (s *mysqlArchive) Save(ctx context.Context, room chat.RoomID, received time.Time, msgs []*chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertMessageSQL)
		if err != nil {
			glog.Errorf("prepare insert message err: %v", err)
			return err
		}
		defer stmt.Close()

		for _, m := range msgs {
			payload, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, string(room), received, m.Nick, m.Recipient(), m.Body, string(payload)); err != nil {
				glog.Errorf("insert message exec err: %v", err)
				return err
			}
		}
		return nil
	})
}

func (s *mysqlArchive) Recent(ctx context.Context, room chat.RoomID, limit int) ([]*Record, error) {
	var out []*Record
	if err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, recentSQL, string(room), limit)
		if err != nil {
			glog.Errorf("recent messages query err: %v", err)
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r Record
			var payload string
			if err := rows.Scan(&r.Seq, &r.Received, &payload); err != nil {
				glog.Errorf("recent messages scan err: %v", err)
				return err
			}
			if err := json.NewDecoder(strings.NewReader(payload)).Decode(&r.Message); err != nil {
				return err
			}
			r.Room = room
			out = append(out, &r)
		}
		return rows.Err()
	}, &sql.TxOptions{ReadOnly: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mysqlArchive) DeleteOutdated(ctx context.Context, ttlDays int32) (int32, error) {
	var numDeleted int32
	if err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, cleanMessagesSQL, GetDayBefore(ttlDays))
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}

		numDeleted = int32(n)
		return nil
	}); err != nil {
		return 0, err
	}
	return numDeleted, nil
}
