package database

import "context"

const createUserSQL = `
INSERT INTO users (user_id, name, role, hashed_password)
VALUES ($1, $2, $3, $4)
RETURNING user_id, name, role, hashed_password`

type CreateUserParams struct {
	UserID         string
	Name           string
	Role           string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUserSQL, arg.UserID, arg.Name, arg.Role, arg.HashedPassword)
	var u User
	err := row.Scan(&u.UserID, &u.Name, &u.Role, &u.HashedPassword)
	return u, err
}

const getUserSQL = `
SELECT user_id, name, role, hashed_password
FROM users
WHERE user_id = $1`

func (q *Queries) GetUser(ctx context.Context, userID string) (User, error) {
	row := q.db.QueryRow(ctx, getUserSQL, userID)
	var u User
	err := row.Scan(&u.UserID, &u.Name, &u.Role, &u.HashedPassword)
	return u, err
}
