package main

import (
	"os"

	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"
	"go-pos-kardex/pkg/database"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Reconciliation check: the movement log is the source of truth for
// stock, the products.stock column only a materialized view of it.
// This tool replays each product's Kardex and reports any drift between
// the two. Read-only; exits non-zero when drift is found.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, relying on system env")
	}

	db := database.ConnectDB(log)

	movementRepo := repository.NewMovementRepo(db)

	var products []model.Product
	if err := db.Order("sku ASC").Find(&products).Error; err != nil {
		log.WithError(err).Fatal("failed to list products")
	}

	drifted := 0
	for _, product := range products {
		movements, err := movementRepo.FindByProduct(product.ID)
		if err != nil {
			log.WithError(err).WithField("sku", product.SKU).Error("failed to load movements")
			continue
		}

		expected := replay(movements)
		if expected != product.Stock {
			drifted++
			log.WithFields(logrus.Fields{
				"sku":      product.SKU,
				"recorded": product.Stock,
				"expected": expected,
			}).Error("stock drift detected")
		}
	}

	if drifted > 0 {
		log.WithField("products", drifted).Error("reconciliation failed")
		os.Exit(1)
	}
	log.WithField("products", len(products)).Info("reconciliation clean")
}

// replay folds a product's movement history into its expected stock.
// CREATED and DELETED carry the absolute stock at that instant and reset
// the baseline; STOCK_IN adds; STOCK_OUT subtracts.
func replay(movements []model.Movement) int {
	stock := 0
	for _, m := range movements {
		switch m.Kind {
		case model.KindCreated, model.KindDeleted:
			stock = m.Quantity
		case model.KindStockIn:
			stock += m.Quantity
		case model.KindStockOut:
			stock -= m.Quantity
		}
	}
	return stock
}
