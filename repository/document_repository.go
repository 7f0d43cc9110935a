package repository

import (
	"database/sql"
	"fmt"

	"sonicpdf/model"
)

// DocumentRepository defines the interface for document metadata operations.
// The PDF bytes themselves live in object storage.
type DocumentRepository interface {
	CreateDocument(doc *model.Document) (int64, error)
	GetDocumentByID(id int64) (*model.Document, error)
	ListDocumentsByUser(userID int64) ([]*model.Document, error)
	UpdateLastPage(id int64, userID int64, page int) error
	DeleteDocument(id int64, userID int64) error
}

// mysqlDocumentRepository implements DocumentRepository for MySQL.
type mysqlDocumentRepository struct {
	db *sql.DB
}

// NewMySQLDocumentRepository creates a new mysqlDocumentRepository.
func NewMySQLDocumentRepository(db *sql.DB) DocumentRepository {
	return &mysqlDocumentRepository{db: db}
}

// CreateDocument records an uploaded document's metadata.
func (r *mysqlDocumentRepository) CreateDocument(doc *model.Document) (int64, error) {
	query := `INSERT INTO documents (user_id, title, file_name, object_key, size_bytes, page_count, last_page)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create document statement: %w", err)
	}
	defer stmt.Close()

	lastPage := doc.LastPage
	if lastPage < 1 {
		lastPage = 1
	}
	res, err := stmt.Exec(doc.UserID, doc.Title, doc.FileName, doc.ObjectKey,
		doc.SizeBytes, doc.PageCount, lastPage)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create document statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for document: %w", err)
	}
	return id, nil
}

const documentColumns = "id, user_id, title, file_name, object_key, size_bytes, page_count, last_page, created_at"

func scanDocument(scan func(dest ...interface{}) error) (*model.Document, error) {
	doc := &model.Document{}
	err := scan(&doc.ID, &doc.UserID, &doc.Title, &doc.FileName, &doc.ObjectKey,
		&doc.SizeBytes, &doc.PageCount, &doc.LastPage, &doc.UploadedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentByID retrieves one document's metadata.
func (r *mysqlDocumentRepository) GetDocumentByID(id int64) (*model.Document, error) {
	row := r.db.QueryRow("SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to scan document row for ID %d: %w", id, err)
	}
	return doc, nil
}

// ListDocumentsByUser returns a user's documents, newest first.
func (r *mysqlDocumentRepository) ListDocumentsByUser(userID int64) ([]*model.Document, error) {
	rows, err := r.db.Query("SELECT "+documentColumns+" FROM documents WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for user %d: %w", userID, err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return docs, nil
}

// UpdateLastPage stores the reader's resume position.
func (r *mysqlDocumentRepository) UpdateLastPage(id int64, userID int64, page int) error {
	if page < 1 {
		page = 1
	}
	res, err := r.db.Exec("UPDATE documents SET last_page = ? WHERE id = ? AND user_id = ?", page, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update last page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %d not found for user %d", id, userID)
	}
	return nil
}

// DeleteDocument removes a document's metadata. Ownership is enforced here;
// the object storage cleanup happens in the handler.
func (r *mysqlDocumentRepository) DeleteDocument(id int64, userID int64) error {
	res, err := r.db.Exec("DELETE FROM documents WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %d not found for user %d", id, userID)
	}
	return nil
}
