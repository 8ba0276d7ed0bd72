package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"facility-booking-backend/models"

	toml "github.com/pelletier/go-toml/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Directory is the on-disk seed for the read-only collaborators the booking
// core looks things up in: branches, facilities, coaches, members and passes.
type Directory struct {
	Branches []struct {
		Code    string `toml:"code"`
		Name    string `toml:"name"`
		Address string `toml:"address"`
		Phone   string `toml:"phone"`
	} `toml:"branches"`
	Facilities []struct {
		Name         string `toml:"name"`
		Branch       string `toml:"branch"`
		ResourceType string `toml:"resource_type"`
		Description  string `toml:"description"`
	} `toml:"facilities"`
	Coaches []struct {
		Name  string `toml:"name"`
		Color string `toml:"color"`
	} `toml:"coaches"`
	Members []struct {
		FullName string `toml:"full_name"`
		Phone    string `toml:"phone"`
		Email    string `toml:"email"`
		Branch   string `toml:"branch"`
	} `toml:"members"`
	Products []struct {
		Name       string `toml:"name"`
		Type       string `toml:"type"`
		Category   string `toml:"category"`
		TotalCount int    `toml:"total_count"`
		ValidDays  int    `toml:"valid_days"`
	} `toml:"products"`
	Passes []struct {
		MemberPhone    string `toml:"member_phone"`
		Product        string `toml:"product"`
		RemainingCount *int   `toml:"remaining_count"`
		ExpiryDate     string `toml:"expiry_date"`
	} `toml:"passes"`
}

// LoadDirectory parses a TOML seed file.
func LoadDirectory(path string) (Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Directory{}, fmt.Errorf("read seed file: %w", err)
	}
	var dir Directory
	if err := unmarshalTOML(string(raw), &dir); err != nil {
		return Directory{}, fmt.Errorf("parse seed file: %w", err)
	}
	return dir, nil
}

func unmarshalTOML(raw string, dir *Directory) error {
	return toml.Unmarshal([]byte(raw), dir)
}

// SeedDirectory upserts the directory by natural key, so running it on every
// start is safe. Everything happens in one transaction.
func SeedDirectory(db *gorm.DB, dir Directory) error {
	return db.Transaction(func(tx *gorm.DB) error {
		branches := map[string]bool{}
		for _, b := range dir.Branches {
			code := strings.ToUpper(strings.TrimSpace(b.Code))
			if code == "" {
				return errors.New("seed: branch code is required")
			}
			row := models.Branch{Code: code}
			if err := tx.Where(models.Branch{Code: code}).
				Assign(models.Branch{Name: b.Name, Address: b.Address, Phone: b.Phone}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed branch %s: %w", code, err)
			}
			branches[code] = true
		}

		for _, f := range dir.Facilities {
			branch := strings.ToUpper(strings.TrimSpace(f.Branch))
			if !branches[branch] {
				var count int64
				if err := tx.Model(&models.Branch{}).Where("code = ?", branch).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return fmt.Errorf("seed: facility %q references unknown branch %q", f.Name, f.Branch)
				}
			}
			row := models.Facility{}
			if err := tx.Where(models.Facility{Name: strings.TrimSpace(f.Name), Branch: branch}).
				Assign(models.Facility{ResourceType: strings.ToUpper(strings.TrimSpace(f.ResourceType)), Description: f.Description}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed facility %s: %w", f.Name, err)
			}
		}

		for _, c := range dir.Coaches {
			row := models.Coach{}
			if err := tx.Where(models.Coach{Name: strings.TrimSpace(c.Name)}).
				Assign(models.Coach{Color: c.Color}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed coach %s: %w", c.Name, err)
			}
		}

		for _, m := range dir.Members {
			row := models.Member{}
			if err := tx.Where(models.Member{Phone: strings.TrimSpace(m.Phone)}).
				Assign(models.Member{FullName: m.FullName, Email: m.Email, Branch: strings.ToUpper(m.Branch)}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed member %s: %w", m.Phone, err)
			}
		}

		for _, p := range dir.Products {
			row := models.Product{}
			if err := tx.Where(models.Product{Name: strings.TrimSpace(p.Name)}).
				Assign(models.Product{
					Type:       strings.ToUpper(strings.TrimSpace(p.Type)),
					Category:   p.Category,
					TotalCount: p.TotalCount,
					ValidDays:  p.ValidDays,
				}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}

		for _, p := range dir.Passes {
			if err := seedPass(tx, p.MemberPhone, p.Product, p.RemainingCount, p.ExpiryDate); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedPass creates a pass only when the member holds none for that product.
func seedPass(tx *gorm.DB, phone, productName string, remaining *int, expiry string) error {
	var member models.Member
	if err := tx.Where("phone = ?", strings.TrimSpace(phone)).First(&member).Error; err != nil {
		return fmt.Errorf("seed pass: member %s: %w", phone, err)
	}
	var product models.Product
	if err := tx.Where("name = ?", strings.TrimSpace(productName)).First(&product).Error; err != nil {
		return fmt.Errorf("seed pass: product %s: %w", productName, err)
	}

	var existing int64
	if err := tx.Model(&models.MemberProduct{}).
		Where("member_id = ? AND product_id = ?", member.ID, product.ID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	pass := models.MemberProduct{
		MemberID:       member.ID,
		ProductID:      product.ID,
		TotalCount:     product.TotalCount,
		RemainingCount: product.TotalCount,
		Status:         models.PassActive,
	}
	if remaining != nil {
		pass.RemainingCount = *remaining
	}
	if strings.TrimSpace(expiry) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(expiry))
		if err != nil {
			return fmt.Errorf("seed pass: expiry %q: %w", expiry, err)
		}
		d := datatypes.Date(t)
		pass.ExpiryDate = &d
	} else if product.ValidDays > 0 {
		d := datatypes.Date(time.Now().AddDate(0, 0, product.ValidDays))
		pass.ExpiryDate = &d
	}
	if pass.RemainingCount <= 0 && (product.Type == models.ProductCount || product.Type == models.ProductSingleUse) {
		pass.Status = models.PassDepleted
	}
	return tx.Create(&pass).Error
}
