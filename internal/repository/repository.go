package repository

import (
	"aggregat4/coffeeshop/internal/domain"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aggregat4/go-baselib/migrations"
	"github.com/go-faster/errors"
	"github.com/mattn/go-sqlite3"
)

var mymigrations = []migrations.Migration{
	{
		SequenceId: 1,
		Sql: `
		-- Enable WAL mode on the database to allow for concurrent reads and writes
		PRAGMA journal_mode=WAL;

		CREATE TABLE IF NOT EXISTS drinks (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			recipe TEXT NOT NULL
		);
		`,
	},
}

// ErrDuplicateTitle is returned when a drink with the same title already exists.
var ErrDuplicateTitle = errors.New("a drink with this title already exists")

var defaultDrink = domain.Drink{
	Title:  "water",
	Recipe: domain.Recipe{{Name: "water", Color: "blue", Parts: 1}},
}

type Store struct {
	db *sql.DB
}

func CreateFileDbUrl(dbName string) string {
	return fmt.Sprintf("file:%s.sqlite", dbName)
}

func CreateInMemoryDbUrl() string {
	return ":memory:"
}

func (store *Store) InitAndVerifyDb(dbUrl string) error {
	var err error
	store.db, err = sql.Open("sqlite3", dbUrl)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	if dbUrl == CreateInMemoryDbUrl() {
		// every connection to :memory: is its own database
		store.db.SetMaxOpenConns(1)
	}
	return migrations.MigrateSchema(store.db, mymigrations)
}

func (store *Store) Close() error {
	if store.db == nil {
		return nil
	}
	return store.db.Close()
}

// ResetDrinks removes all drinks and seeds the default one. Either all of it
// happens or nothing does.
func (store *Store) ResetDrinks() error {
	tx, err := store.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting reset")
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM drinks"); err != nil {
		return errors.Wrap(err, "clearing drinks")
	}
	if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = 'drinks'"); err != nil {
		return errors.Wrap(err, "resetting drink ids")
	}
	if _, err := insertDrink(tx, defaultDrink.Title, defaultDrink.Recipe); err != nil {
		return errors.Wrap(err, "seeding default drink")
	}
	return tx.Commit()
}

func (store *Store) ListDrinks() ([]domain.Drink, error) {
	rows, err := store.db.Query("SELECT id, title, recipe FROM drinks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	drinks := make([]domain.Drink, 0)
	for rows.Next() {
		drink, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		drinks = append(drinks, *drink)
	}
	return drinks, rows.Err()
}

func (store *Store) FindDrink(id int64) (*domain.Drink, error) {
	rows, err := store.db.Query("SELECT id, title, recipe FROM drinks WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if rows.Next() {
		return scanDrink(rows)
	}
	return nil, rows.Err()
}

func (store *Store) FindDrinkByTitle(title string) (*domain.Drink, error) {
	rows, err := store.db.Query("SELECT id, title, recipe FROM drinks WHERE title = ?", title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if rows.Next() {
		return scanDrink(rows)
	}
	return nil, rows.Err()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (store *Store) CreateDrink(title string, recipe domain.Recipe) (*domain.Drink, error) {
	return insertDrink(store.db, title, recipe)
}

func insertDrink(db execer, title string, recipe domain.Recipe) (*domain.Drink, error) {
	encoded, err := json.Marshal(recipe)
	if err != nil {
		return nil, errors.Wrap(err, "encoding recipe")
	}
	result, err := db.Exec("INSERT INTO drinks (title, recipe) VALUES (?, ?)", title, string(encoded))
	if err != nil {
		return nil, translateError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Drink{Id: id, Title: title, Recipe: recipe}, nil
}

func (store *Store) UpdateDrink(drink domain.Drink) error {
	encoded, err := json.Marshal(drink.Recipe)
	if err != nil {
		return errors.Wrap(err, "encoding recipe")
	}
	_, err = store.db.Exec("UPDATE drinks SET title = ?, recipe = ? WHERE id = ?", drink.Title, string(encoded), drink.Id)
	return translateError(err)
}

// DeleteDrink reports whether a drink was removed.
func (store *Store) DeleteDrink(id int64) (bool, error) {
	result, err := store.db.Exec("DELETE FROM drinks WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanDrink(rows *sql.Rows) (*domain.Drink, error) {
	var drink domain.Drink
	var recipe string
	if err := rows.Scan(&drink.Id, &drink.Title, &recipe); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recipe), &drink.Recipe); err != nil {
		return nil, errors.Wrapf(err, "decoding recipe of drink %d", drink.Id)
	}
	return &drink, nil
}

func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateTitle
	}
	return err
}
