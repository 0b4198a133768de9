package postgres

import (
	userDatamodel "github.com/serfi-platform/user-management/internal/core/datamodel/user"
	"github.com/serfi-platform/user-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*userDatamodel.User, error) {
	var records []*userDatamodel.User
	err := r.db.Order("id ASC").Find(&records).Error
	return records, err
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var record userDatamodel.User
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByEmail matches the email exactly, case sensitive.
func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var record userDatamodel.User
	err := r.db.Where("email = ?", email).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *UserRepository) Create(record *userDatamodel.User) error {
	return r.db.Create(record).Error
}

// UpdateFields applies a partial column update in a single statement and
// reports how many rows it touched.
func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) (int64, error) {
	tx := r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
}

func (r *UserRepository) GetRoleByID(id int64) (*userDatamodel.Role, error) {
	var role userDatamodel.Role
	err := r.db.Where("id = ?", id).First(&role).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// GetPermissionsForRole joins the association table to permissions with an
// explicit query rather than relying on lazy association traversal.
func (r *UserRepository) GetPermissionsForRole(roleID int64) ([]*userDatamodel.Permission, error) {
	var permissions []*userDatamodel.Permission
	err := r.db.
		Table("permissions").
		Select("permissions.id, permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("role_permissions.id ASC").
		Find(&permissions).Error
	return permissions, err
}
