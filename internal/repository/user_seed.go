package repository

import "context"

// SeedSuperAdmin creates the initial super admin account. It is a no-op
// when an account with the same email already exists, so it is safe to
// call on every startup.
func (r UserRepository) SeedSuperAdmin(ctx context.Context, name, email, passwordHash string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO admin_users (name, email, role, password_hash)
		VALUES ($1, $2, 'super_admin', $3)
		ON CONFLICT (email) DO NOTHING
	`, name, email, passwordHash)
	return err
}
