package quotations_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/quotations"
	"github.com/techcorp/partsquote/rest"
)

func TestStatus(t *testing.T) {
	t.Run("selectable only while open", func(t *testing.T) {
		require.True(t, quotations.StatusOpen.Selectable())
		require.False(t, quotations.StatusOrderConfirmed.Selectable())
		require.False(t, quotations.StatusCompleted.Selectable())
		require.False(t, quotations.StatusCancelled.Selectable())
	})

	t.Run("decided after confirmation", func(t *testing.T) {
		require.True(t, quotations.StatusOrderConfirmed.Decided())
		require.True(t, quotations.StatusCompleted.Decided())
		require.False(t, quotations.StatusOpen.Decided())
		require.False(t, quotations.StatusCancelled.Decided())
	})

	t.Run("labels", func(t *testing.T) {
		require.Equal(t, "Open", quotations.StatusOpen.Label())
		require.Equal(t, "Order confirmed", quotations.StatusOrderConfirmed.Label())
	})

	t.Run("valid", func(t *testing.T) {
		require.True(t, quotations.StatusOpen.Valid())
		require.False(t, quotations.Status("DRAFT").Valid())
	})
}

func TestQuotationService(t *testing.T) {
	t.Run("list forwards filters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/quotations", r.URL.Path)
			require.Equal(t, "ABC1D23", r.URL.Query().Get("licensePlate"))
			require.Equal(t, "OPEN", r.URL.Query().Get("status"))

			w.Write([]byte(`{
				"content":[{"id":"q-1","licensePlate":"ABC1D23","brand":"Volkswagen",
					"createdAt":"2026-03-10T09:00:00Z","items":[],"status":"OPEN"}],
				"totalElements":1,"totalPages":1,"number":0,"size":20,
				"first":true,"last":true,"empty":false
			}`))
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		page, err := svc.List(context.Background(), quotations.ListParams{
			LicensePlate: "ABC1D23",
			Status:       quotations.StatusOpen,
			Size:         20,
		})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		require.Equal(t, "q-1", page.Content[0].ID)
	})

	t.Run("create posts items and selected vendors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/quotations", r.URL.Path)

			var body quotations.NewQuotation
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "ABC1D23", body.LicensePlate)
			require.Len(t, body.Items, 1)
			require.Equal(t, []string{"v-disk", "v-auto"}, body.VendorIDs)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"q-2","licensePlate":"ABC1D23","brand":"Volkswagen",
				"createdAt":"2026-03-10T09:00:00Z","items":[],"status":"OPEN"}`))
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		created, err := svc.Create(context.Background(), quotations.NewQuotation{
			LicensePlate: "ABC1D23",
			Brand:        "Volkswagen",
			Items:        []quotations.NewItem{{PartName: "Pastilha de freio", Quantity: 2}},
			VendorIDs:    []string{"v-disk", "v-auto"},
		})
		require.NoError(t, err)
		require.Equal(t, "q-2", created.ID)
		require.Equal(t, quotations.StatusOpen, created.Status)
	})

	t.Run("missing quotation maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		_, err := svc.Get(context.Background(), "q-404")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("offers decodes the vendor responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/quotations/q-1/offers", r.URL.Path)
			w.Write([]byte(`[{
				"vendorId":"v-disk","vendorName":"Disk Pecas",
				"submittedAt":"2026-03-10T09:30:00Z","freightCost":0,
				"lines":[{"partName":"Pastilha de freio","quantity":2,"unitPrice":245}]
			}]`))
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		offers, err := svc.Offers(context.Background(), "q-1")
		require.NoError(t, err)
		require.Len(t, offers, 1)
		require.Equal(t, "Disk Pecas", offers[0].VendorName)
		require.Equal(t, float64(245), offers[0].Lines[0].UnitPrice)
	})

	t.Run("confirm order posts selections and total", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/quotations/q-1/confirm", r.URL.Path)

			var body struct {
				Selections []quotations.SelectionEntry `json:"selections"`
				Total      float64                     `json:"total"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Selections, 2)
			require.InDelta(t, 642, body.Total, 1e-9)

			w.Write([]byte(`{"id":"q-1","licensePlate":"ABC1D23","brand":"Volkswagen",
				"createdAt":"2026-03-10T09:00:00Z","items":[],
				"status":"ORDER_CONFIRMED","confirmedVendorId":"v-auto"}`))
		}))
		defer server.Close()

		selection := quotations.NewSelection(quotations.StatusOpen)
		require.NoError(t, selection.Toggle(entry("Pastilha", "v-auto", 2, 250, 25), true))
		require.NoError(t, selection.Toggle(entry("Filtro", "v-auto", 1, 35, 25), true))
		require.NoError(t, selection.Toggle(entry("Vela", "v-disk", 4, 18, 10), true))
		require.NoError(t, selection.Toggle(entry("Vela", "v-disk", 4, 18, 10), false))
		require.NoError(t, selection.Toggle(entry("Vela", "v-disk", 4, 18, 10), true))
		require.NoError(t, selection.Toggle(entry("Vela", "v-disk", 4, 18, 10), false))

		// v-auto parts 535 + freight 25, v-disk parts 72 + freight 10
		require.NoError(t, selection.Toggle(entry("Vela", "v-disk", 4, 18, 10), true))
		require.Equal(t, 3, selection.Len())

		svc := quotations.NewService(rest.NewClient(server.URL))
		confirmed, err := svc.ConfirmOrder(context.Background(), "q-1", selection)
		require.NoError(t, err)
		require.Equal(t, quotations.StatusOrderConfirmed, confirmed.Status)
		require.Equal(t, "v-auto", confirmed.ConfirmedVendorID)
	})

	t.Run("confirm order rejects an empty selection", func(t *testing.T) {
		svc := quotations.NewService(rest.NewClient("http://127.0.0.1:1"))
		_, err := svc.ConfirmOrder(context.Background(), "q-1", quotations.NewSelection(quotations.StatusOpen))
		require.Error(t, err)

		_, err = svc.ConfirmOrder(context.Background(), "q-1", nil)
		require.Error(t, err)
	})
}

func TestWatch(t *testing.T) {
	t.Run("delivers pages until cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"content":[],"totalElements":0,"totalPages":1,"number":0,
				"size":20,"first":true,"last":true,"empty":true}`))
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		ctx, cancel := context.WithCancel(context.Background())

		var deliveries atomic.Int64
		done := make(chan error, 1)
		go func() {
			done <- svc.Watch(ctx, quotations.ListParams{Size: 20}, 10*time.Millisecond,
				func(page rest.Page[quotations.Quotation], err error) {
					require.NoError(t, err)
					if deliveries.Add(1) >= 3 {
						cancel()
					}
				})
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("watch never stopped")
		}
		require.GreaterOrEqual(t, deliveries.Load(), int64(3))
	})

	t.Run("fetch failure delivers an empty page with the error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := quotations.NewService(rest.NewClient(server.URL))
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- svc.Watch(ctx, quotations.ListParams{Size: 20}, 10*time.Millisecond,
				func(page rest.Page[quotations.Quotation], err error) {
					require.ErrorIs(t, err, errs.ErrTransport)
					require.True(t, page.Empty)
					require.Equal(t, 1, page.TotalPages)
					cancel()
				})
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("watch never stopped")
		}
	})
}
