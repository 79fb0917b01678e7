package importer

import (
	"gorm.io/gorm"
)

// Create persists the payments of the previews, all-or-nothing.
func Create(db *gorm.DB, previews []PaymentPreview) ([]PaymentPreview, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for i, preview := range previews {
			err := tx.Create(&preview.Payment).Error
			if err != nil {
				return err
			}

			previews[i] = preview
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return previews, nil
}
