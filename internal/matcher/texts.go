package matcher

import (
	"fmt"

	"github.com/OperacionalChopp/botchopp/internal/textnorm"
)

// Canned replies sent to Telegram users
const (
	FallbackText = "Desculpe, não entendi. 🤔\nVocê pode perguntar sobre horário, formas de pagamento, ou se atendemos em uma região específica."

	MenuPromptText = "Encontrei algumas informações que podem ser úteis. Qual delas você procura?"

	UnknownSelectionText = "Desculpe, não consegui encontrar a resposta para essa opção."

	regionTemplate = "Sim, atendemos em %s! ✅\nPode fazer seu pedido pelo site que entregamos aí."
)

// TriggerWords mark a message as a delivery-coverage question. They are
// compared against the normalized message.
var TriggerWords = []string{"atende", "entrega", "regiao", "bairro", "cidade"}

// RegionText returns the affirmative delivery reply for a normalized region
func RegionText(region string) string {
	return fmt.Sprintf(regionTemplate, textnorm.Title(region))
}
