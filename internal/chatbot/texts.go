package chatbot

// WelcomeText answers /start
const WelcomeText = "Olá! Tudo bem? Aqui é da equipe do Chopp Brahma Express de Águas Claras. " +
	"Passando pra te mostrar como ficou fácil garantir seu chopp gelado, com desconto especial, " +
	"entregue direto na sua casa!\n\n" +
	"Já pensou em garantir seu Chopp Brahma com até 20% OFF, sem sair de casa? É só clicar:\n" +
	"https://www.choppbrahmaexpress.com.br/chopps\n" +
	"ou\n" +
	"https://www.ze.delivery/produtos/categoria/chopp\n\n" +
	"Aliás, você sabe tirar o chopp perfeito? Dá uma olhada nesse link " +
	"https://l1nk.dev/sabe-tirar-o-chopp-perfeito e descubra como deixar seu chope ainda melhor!"

// HumanContactLabel is the label of the URL button offered with the fallback reply
const HumanContactLabel = "Falar com um atendente"
