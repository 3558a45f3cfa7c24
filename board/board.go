package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// Store gives access to the user and post records of a single
	// corkboard database.
	Store struct {
		db *sql.DB
	}

	// User is a registered identity. The password hash never leaves
	// the store through this type.
	User struct {
		ID     int64
		Handle string
	}
)

// MinHandleLen is the shortest login handle the board accepts.
const MinHandleLen = 4

func openBoardDatabase(ctx context.Context, dir string) (*sql.DB, error) {
	dbfile := filepath.Join(dir, "board.db")
	err := os.MkdirAll(filepath.Dir(dbfile), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory %v to store the board, cause %w", dir, err)
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_foreign_keys=true&mode=rwc", dbfile)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", dbfile, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping board %v, cause %v", dbfile, err)
	}
	return conn, nil
}

// Open loads the board database stored under dir, creating it and its
// schema when missing.
func Open(ctx context.Context, dir string) (*Store, error) {
	conn, err := openBoardDatabase(ctx, dir)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn}
	err = s.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init board %v, cause %v", dir, err)
	}
	return s, nil
}

// CreateUser persists a new identity with the given (already hashed)
// password. Handles are unique, case-sensitive, and immutable afterwards.
func (s *Store) CreateUser(ctx context.Context, handle string, passwordHash string) (int64, error) {
	if utf8.RuneCountInString(handle) < MinHandleLen {
		return 0, InvalidHandle{Handle: handle}
	}
	hash := handleHash(handle)
	var existing int64
	err := s.db.QueryRowContext(ctx, `select user_id from users where handle_hash64 = ? and handle = ?`, hash, handle).Scan(&existing)
	if err == nil {
		return 0, HandleTaken{Handle: handle}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("unable to check handle %v, cause %w", handle, err)
	}
	res, err := s.db.ExecContext(ctx, `insert into users(handle, handle_hash64, password) values (?, ?, ?)`,
		handle, hash, passwordHash)
	if err != nil {
		// two registrations may race past the lookup above,
		// the unique constraint settles it
		return 0, HandleTaken{Handle: handle}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to fetch id of new user %v, cause %w", handle, err)
	}
	return id, nil
}

// LookupUser returns the identity registered under handle along with its
// stored password hash.
func (s *Store) LookupUser(ctx context.Context, handle string) (User, string, error) {
	var u User
	var stored string
	err := s.db.QueryRowContext(ctx, `select user_id, handle, password from users where handle_hash64 = ? and handle = ?`,
		handleHash(handle), handle).Scan(&u.ID, &u.Handle, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", UserNotFound{Handle: handle}
	} else if err != nil {
		return User{}, "", fmt.Errorf("unable to lookup user %v, cause %w", handle, err)
	}
	return u, stored, nil
}

// UserByID resolves the durable reference carried by a session token back
// to its identity.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select user_id, handle from users where user_id = ?`, id).Scan(&u.ID, &u.Handle)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Handle: fmt.Sprintf("#%v", id)}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user %v, cause %w", id, err)
	}
	return u, nil
}

func handleHash(handle string) int64 {
	return int64(xxhash.Sum64String(handle))
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id integer not null primary key autoincrement,
			handle text not null unique,
			handle_hash64 integer not null,
			password text not null,
			created_at text not null default current_timestamp
		)`,
		`create index if not exists idx_users_handle_hash64
			on users(handle_hash64)
		`,
		`create table if not exists posts(
			post_id integer not null primary key autoincrement,
			title text not null,
			content text not null,
			writer integer not null,
			created_at text not null default current_timestamp,
			foreign key (writer) references users(user_id)
		)`,
		`create index if not exists idx_posts_writer
			on posts(writer)
		`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
