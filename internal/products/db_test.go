package product

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, title string, priceCents int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:      title,
		PriceCents: priceCents,
		Code:       "code-" + uuid.NewString(),
		Stock:      10,
		Owner:      "seller@example.com",
		Status:     true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}
