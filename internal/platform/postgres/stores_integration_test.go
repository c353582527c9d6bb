//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/platform/postgres"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/phrazzld/receipt-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func TestStores_DocumentAndChallengeLifecycle(t *testing.T) {
	db := testdb.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, logger)
		businesses := postgres.NewPostgresBusinessStore(tx, logger)
		receipts := postgres.NewPostgresReceiptStore(tx, logger)
		challenges := postgres.NewPostgresChallengeStore(tx, logger)

		user, err := domain.NewUser("owner-"+uuid.NewString()[:8]+"@example.com", "longenough")
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, user))

		business, err := domain.NewBusiness(user.ID, domain.BusinessPatch{
			Name:    strPtr("Corner Bakery"),
			Address: strPtr("Rua Augusta 1"),
			City:    strPtr("Lisbon"),
			State:   strPtr("Lisboa"),
			ZipCode: strPtr("1100-048"),
		})
		require.NoError(t, err)
		require.NoError(t, businesses.Create(ctx, business))

		receipt, err := domain.NewReceipt(user.ID, business.ID, domain.ReceiptInput{
			Customer: domain.Customer{Name: strPtr("Ana")},
			Amounts:  domain.Amounts{Subtotal: 5, Total: 5},
			Items:    domain.Items{{Name: "Coffee", Quantity: 2, UnitPrice: 2.5, Total: 5}},
		})
		require.NoError(t, err)
		receipt.ReceiptNumber = domain.GenerateNumber(domain.DocumentKindReceipt)
		require.NoError(t, receipts.Create(ctx, receipt))

		got, err := receipts.GetForBusiness(ctx, receipt.ID, business.ID)
		require.NoError(t, err)
		assert.Equal(t, receipt.ReceiptNumber, got.ReceiptNumber)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Coffee", got.Items[0].Name)

		_, err = receipts.GetForBusiness(ctx, receipt.ID, uuid.New())
		assert.True(t, errors.Is(err, store.ErrNotFound))

		challenge, err := domain.NewChallenge(domain.ChallengeInput{
			Document:        domain.ReceiptRef(receipt.ID),
			ChallengerName:  "Rui",
			ChallengerEmail: "rui@example.com",
			Reason:          "Charged twice",
		})
		require.NoError(t, err)
		require.NoError(t, challenges.Create(ctx, challenge))

		listed, err := challenges.ListByDocuments(ctx, []uuid.UUID{receipt.ID}, nil)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, domain.ChallengeStatusPending, listed[0].Status)
		require.NotNil(t, listed[0].Document.ReceiptID())
		assert.Equal(t, receipt.ID, *listed[0].Document.ReceiptID())

		notes := "Refunded one coffee"
		require.NoError(t, listed[0].Resolve(domain.ChallengeStatusResolved, &notes, time.Now().UTC()))
		require.NoError(t, challenges.UpdateResolution(ctx, listed[0]))

		resolved, err := challenges.GetByID(ctx, challenge.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ChallengeStatusResolved, resolved.Status)
		require.NotNil(t, resolved.ResolvedAt)
		assert.Equal(t, notes, *resolved.ResolutionNotes)

		// A unique violation aborts the transaction, so this runs last.
		err = users.Create(ctx, &domain.User{ID: uuid.New(), Email: user.Email, Password: "longenough", IsActive: true})
		assert.True(t, errors.Is(err, store.ErrEmailExists), "email must be unique, got %v", err)
	})
}
