package responder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

var testProduct = core.ProductInfo{
	ID: "prod-1", Title: "Bicicleta de montaña", Price: 150, Zone: "Chamberí",
	Condition: "buen estado", Description: "Poco uso, revisada este año.",
	Shipping: true,
}

var testBuyer = core.BuyerProfile{ID: "maria_92"}

func TestSelectGreetingConfirmsAvailability(t *testing.T) {
	s := NewSelector(nil)
	text, ok := s.Select(context.Background(), core.StateInitial, core.IntentGreeting, core.TierLow, testProduct, testBuyer)
	if !ok {
		t.Fatal("expected a response")
	}
	if !strings.Contains(text, "sigue disponible") {
		t.Errorf("greeting reply must confirm availability, got %q", text)
	}
	if !strings.Contains(text, "maria_92") || !strings.Contains(text, "Bicicleta de montaña") {
		t.Errorf("placeholders not substituted: %q", text)
	}
}

func TestSelectHighTierReturnsSafetyTemplate(t *testing.T) {
	s := NewSelector(nil)
	for _, in := range []core.Intent{core.IntentFraud, core.IntentPrice, core.IntentGreeting} {
		text, ok := s.Select(context.Background(), core.StateInitial, in, core.TierHigh, testProduct, testBuyer)
		if !ok {
			t.Fatalf("expected safety response for %v", in)
		}
		if !strings.Contains(text, "dentro de la plataforma") {
			t.Errorf("expected safety disclosure for %v, got %q", in, text)
		}
	}
}

func TestSelectNoTemplateMeansNoResponse(t *testing.T) {
	s := NewSelector(nil)
	tests := []core.Intent{core.IntentFraud, core.IntentUnknown}
	for _, in := range tests {
		text, ok := s.Select(context.Background(), core.StateInitial, in, core.TierLow, testProduct, testBuyer)
		if ok || text != "" {
			t.Errorf("expected explicit no-response for %v, got %q", in, text)
		}
	}
}

func TestSelectPriceSubstitution(t *testing.T) {
	s := NewSelector(nil)
	text, ok := s.Select(context.Background(), core.StateInitial, core.IntentPrice, core.TierLow, testProduct, testBuyer)
	if !ok {
		t.Fatal("expected a response")
	}
	if !strings.Contains(text, "150") {
		t.Errorf("expected price in reply, got %q", text)
	}
}

func TestSelectFractionalPriceFormat(t *testing.T) {
	product := testProduct
	product.Price = 99.5
	s := NewSelector(nil)
	text, _ := s.Select(context.Background(), core.StateInitial, core.IntentPrice, core.TierLow, product, testBuyer)
	if !strings.Contains(text, "99.50") {
		t.Errorf("expected fractional price, got %q", text)
	}
}

func TestSelectPickupOnlyShipping(t *testing.T) {
	product := testProduct
	product.Shipping = false
	s := NewSelector(nil)
	text, ok := s.Select(context.Background(), core.StateInitial, core.IntentShipping, core.TierLow, product, testBuyer)
	if !ok {
		t.Fatal("expected a response")
	}
	if !strings.Contains(text, "entrega en mano") || !strings.Contains(text, "Chamberí") {
		t.Errorf("expected pickup-only reply with zone, got %q", text)
	}
}

func TestSelectStateSpecificBucket(t *testing.T) {
	s := NewSelector(nil)
	text, ok := s.Select(context.Background(), core.StateCoordinating, core.IntentLocation, core.TierLow, testProduct, testBuyer)
	if !ok {
		t.Fatal("expected a response")
	}
	if !strings.Contains(text, "quedamos por Chamberí") {
		t.Errorf("expected coordinating-specific template, got %q", text)
	}
}

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(_ context.Context, _ core.Conversation, _ core.ProductInfo, _ string) (string, error) {
	return g.text, g.err
}

func TestSelectGeneratorPreferred(t *testing.T) {
	s := NewSelector(stubGenerator{text: "Claro, sigue a la venta."})
	text, ok := s.Select(context.Background(), core.StateInitial, core.IntentGreeting, core.TierLow, testProduct, testBuyer)
	if !ok || text != "Claro, sigue a la venta." {
		t.Errorf("expected generator text, got %q (%v)", text, ok)
	}
}

func TestSelectGeneratorFallsBackOnError(t *testing.T) {
	s := NewSelector(stubGenerator{err: errors.New("model unavailable")})
	text, ok := s.Select(context.Background(), core.StateInitial, core.IntentGreeting, core.TierLow, testProduct, testBuyer)
	if !ok || !strings.Contains(text, "sigue disponible") {
		t.Errorf("expected template fallback, got %q (%v)", text, ok)
	}
}

// The high-tier override applies to generator output too.
func TestSelectGeneratorOverriddenByHighTier(t *testing.T) {
	s := NewSelector(stubGenerator{text: "Claro, dame tu teléfono."})
	text, _ := s.Select(context.Background(), core.StateInitial, core.IntentFraud, core.TierHigh, testProduct, testBuyer)
	if !strings.Contains(text, "dentro de la plataforma") {
		t.Errorf("expected safety override, got %q", text)
	}
}
