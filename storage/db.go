package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrNotFound é retornado quando o documento ou registro não existe.
var ErrNotFound = errors.New("registro não encontrado")

// ErrImmutableField é retornado quando o patch tenta alterar a chave do documento.
var ErrImmutableField = errors.New("campo não pode ser alterado")

// DB representa a conexão com o banco de dados PostgreSQL.
type DB struct {
	*sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso.")

	if err := runMigrations(db.DB); err != nil {
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{db}, nil
}

// runMigrations executa as migrações embutidas no binário usando sql-migrate.
func runMigrations(db *sql.DB) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		logrus.Infof("Aplicadas %d migrações ao banco de dados.", n)
	} else {
		logrus.Info("Nenhuma migração nova para aplicar.")
	}
	return nil
}

// Investments retorna o repositório de títulos.
func (d *DB) Investments(defaultMinimumValue string) *InvestmentsRepository {
	return NewInvestmentsRepository(d.DB, defaultMinimumValue)
}

// Users retorna o repositório de usuários.
func (d *DB) Users() *UsersRepository {
	return NewUsersRepository(d.DB)
}

// Transactions retorna o repositório de transações acompanhadas.
func (d *DB) Transactions() *TransactionsRepository {
	return NewTransactionsRepository(d.DB)
}
