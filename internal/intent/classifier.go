package intent

import (
	"regexp"
	"strings"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// Rule couples an intent with its match predicate. Rules are evaluated in
// slice order and the first match wins, so the slice IS the precedence:
// fraud-indicative phrasing must never be masked by an innocuous co-occurring
// word like "hola".
type Rule struct {
	Intent core.Intent
	Match  func(msg string) bool
}

// Lexicons shared with the risk scorer. Entries are matched against
// normalized text (lower-cased, accents stripped).
var (
	// ExternalContactTerms ask to move the conversation off-platform.
	ExternalContactTerms = []string{
		"whatsapp", "wasap", "telegram", "dame tu numero", "pasame tu numero",
		"tu telefono", "mi numero es", "llamame", "correo electronico",
		"mandame un email", "gmail", "hotmail",
	}

	// OffPlatformPaymentTerms name irreversible or off-platform payment rails.
	OffPlatformPaymentTerms = []string{
		"western union", "moneygram", "paypal amigos", "paypal familiar",
		"tarjeta regalo", "gift card", "bitcoin", "cripto", "crypto", "usdt",
		"paysafecard", "cheque",
	}

	// OffPlatformLureTerms push the deal out of the marketplace entirely.
	OffPlatformLureTerms = []string{
		"fuera de la plataforma", "fuera de la app", "hablamos por fuera",
		"sin la app", "por privado fuera",
	}

	// UrgencyTerms are pressure phrasing. Urgency alone is not fraud; it only
	// contributes a risk signal.
	UrgencyTerms = []string{
		"urgente", "rapido por favor", "hoy mismo", "ahora mismo", "ya mismo",
		"lo necesito ya", "date prisa", "no puede esperar",
	}
)

// LinkPattern matches shortened or embedded links, which have no place in a
// marketplace chat.
var LinkPattern = regexp.MustCompile(`(https?://|www\.|bit\.ly|tinyurl|goo\.gl|t\.co/|is\.gd|ow\.ly|cutt\.ly)`)

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"¿", "", "¡", "",
)

// Normalize lower-cases, trims and strips Spanish diacritics so keyword
// matching is accent-insensitive ("Está" matches "esta").
func Normalize(message string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(message)))
}

// ContainsAny reports whether any of the terms occurs in the normalized text.
func ContainsAny(msg string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}

func matchFraud(msg string) bool {
	return ContainsAny(msg, ExternalContactTerms) ||
		ContainsAny(msg, OffPlatformPaymentTerms) ||
		ContainsAny(msg, OffPlatformLureTerms) ||
		LinkPattern.MatchString(msg)
}

func keywords(terms ...string) func(string) bool {
	return func(msg string) bool { return ContainsAny(msg, terms) }
}

// Rules is the priority-ordered rule list. Fraud first, then the
// commitment-bearing intents, then informational ones, greeting last. Exported
// so tests can assert the precedence directly.
var Rules = []Rule{
	{core.IntentFraud, matchFraud},
	{core.IntentDirectPurchase, keywords(
		"lo compro", "te lo compro", "me lo quedo", "me lo llevo", "lo quiero",
		"trato hecho", "hacemos el trato", "compro ya",
	)},
	{core.IntentNegotiation, keywords(
		"te doy", "te ofrezco", "ultimo precio", "lo dejas en", "rebaja",
		"descuento", "negociable", "aceptas", "te parece bien", "menos",
	)},
	{core.IntentPrice, keywords(
		"precio", "cuanto", "vale", "cuesta", "euros",
	)},
	{core.IntentLocation, keywords(
		"donde", "zona", "direccion", "quedamos", "recoger", "en persona",
		"punto de encuentro", "cerca de",
	)},
	{core.IntentPayment, keywords(
		"pago", "pagar", "bizum", "efectivo", "transferencia", "tarjeta",
		"paypal", "contrareembolso",
	)},
	{core.IntentShipping, keywords(
		"envio", "envias", "enviar", "correos", "mandas", "mandar",
		"gastos de envio", "a domicilio",
	)},
	{core.IntentProductCondition, keywords(
		"estado", "roto", "usado", "desgaste", "golpes", "defecto",
		"funciona", "como esta",
	)},
	{core.IntentAvailability, keywords(
		"sigue disponible", "todavia disponible", "aun disponible",
		"sigue a la venta", "sigue en venta", "lo tienes aun",
		"disponibilidad",
	)},
	{core.IntentInformation, keywords(
		"medidas", "caracteristicas", "modelo", "marca", "detalles",
		"informacion", "talla", "capacidad",
	)},
	{core.IntentGreeting, keywords(
		"hola", "buenas", "buenos dias", "hey", "saludos", "que tal",
	)},
}

// Classify maps a raw inbound message to one intent. Pure function, no side
// effects. Empty or unrecognized input yields Unknown.
func Classify(message string) core.Intent {
	msg := Normalize(message)
	if msg == "" {
		return core.IntentUnknown
	}
	for _, r := range Rules {
		if r.Match(msg) {
			return r.Intent
		}
	}
	return core.IntentUnknown
}
