package responder

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// safetyTemplate is returned whenever the risk tier is high, regardless of
// intent or state: it steers the conversation back onto the platform channel
// and never engages with the risky request.
const safetyTemplate = "Por seguridad solo gestiono el pago y los mensajes dentro de la plataforma. " +
	"Si te interesa el {title}, seguimos por aqui sin problema."

type bucketKey struct {
	intent core.Intent
	state  core.State
}

// stateTemplates override the intent default for specific conversation states.
var stateTemplates = map[bucketKey]string{
	{core.IntentLocation, core.StateCoordinating}: "Perfecto, quedamos por {zone} en una zona concurrida. Te confirmo la hora por aqui.",
	{core.IntentGreeting, core.StateNegotiating}:  "¡Hola de nuevo {buyer}! Sigo por aqui, dime.",
	{core.IntentPrice, core.StateNegotiating}:     "El precio esta en {price} EUR y ya lo tengo bastante ajustado.",
}

// intentTemplates are the default bucket per intent. Intents with no entry
// (Fraud, Unknown) yield no response: callers must not synthesize a default.
var intentTemplates = map[core.Intent]string{
	core.IntentGreeting:         "¡Hola {buyer}! Si, el {title} sigue disponible. ¿Te interesa?",
	core.IntentAvailability:     "Si, sigue disponible por {price} EUR. ¿Quieres que te cuente algo mas?",
	core.IntentPrice:            "El precio es {price} EUR. Esta en muy buen estado y es su precio de mercado.",
	core.IntentNegotiation:      "Entiendo tu oferta, pero el precio ya esta ajustado. Si te decides pronto podemos cerrarlo por aqui.",
	core.IntentProductCondition: "Esta en {condition}, tal y como se ve en las fotos. Si quieres te mando mas detalle.",
	core.IntentShipping:         "Sobre el envio: lo gestionamos por la plataforma y los gastos van aparte.",
	core.IntentPayment:          "El pago se hace dentro de la plataforma al darle a comprar, es lo mas seguro para los dos.",
	core.IntentLocation:         "Estoy por {zone}. Si lo compras por la plataforma coordinamos la entrega sin problema.",
	core.IntentDirectPurchase:   "¡Genial {buyer}! Dale a comprar en la plataforma y coordinamos la entrega.",
	core.IntentInformation:      "Te cuento: {title}. {description}",
}

// noShippingTemplate replaces the shipping bucket for pickup-only products.
const noShippingTemplate = "Lo siento, no hago envios con este articulo: entrega en mano por {zone}."

// Selector maps (state, intent, risk tier, product, buyer) to a personalized
// response. An optional text generator is treated as one more template
// source, subject to the same high-tier override.
type Selector struct {
	gen core.TextGenerator
}

func NewSelector(gen core.TextGenerator) *Selector {
	return &Selector{gen: gen}
}

// Select returns the candidate response and whether one exists. A false
// second return is the explicit no-response signal.
func (s *Selector) Select(ctx context.Context, state core.State, in core.Intent, tier core.RiskTier, product core.ProductInfo, buyer core.BuyerProfile) (string, bool) {
	// High risk bypasses every bucket, including the generator.
	if tier == core.TierHigh {
		return render(safetyTemplate, product, buyer), true
	}

	if s.gen != nil {
		conv := core.Conversation{BuyerID: buyer.ID, State: state}
		if text, err := s.gen.Generate(ctx, conv, product, ""); err == nil && strings.TrimSpace(text) != "" {
			return text, true
		} else if err != nil {
			log.Printf("responder: generator failed, falling back to templates: %v", err)
		}
	}

	tmpl, ok := stateTemplates[bucketKey{in, state}]
	if !ok {
		tmpl, ok = intentTemplates[in]
	}
	if !ok {
		return "", false
	}
	if in == core.IntentShipping && !product.Shipping {
		tmpl = noShippingTemplate
	}
	return render(tmpl, product, buyer), true
}

func render(tmpl string, product core.ProductInfo, buyer core.BuyerProfile) string {
	r := strings.NewReplacer(
		"{title}", product.Title,
		"{price}", formatPrice(product.Price),
		"{zone}", product.Zone,
		"{condition}", product.Condition,
		"{description}", product.Description,
		"{buyer}", buyer.ID,
	)
	return r.Replace(tmpl)
}

func formatPrice(price float64) string {
	if price == float64(int64(price)) {
		return strconv.FormatInt(int64(price), 10)
	}
	return strconv.FormatFloat(price, 'f', 2, 64)
}
