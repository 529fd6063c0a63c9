// Package chatdesk embeds the chatdesk assistants in a Go program.
//
// A Client wraps one model gateway and exposes three assistants:
//   - Discuss runs the routed conversation that walks topic states
//   - AskSearch answers from Naver, Kakao and Google search results
//   - AskVideo answers questions about a YouTube video's transcript
//
// PDF and text embeddings are available through EmbedPDF and EmbedText,
// optionally capped by WithEmbeddingBudget and reported by Usage.
//
//	client, err := chatdesk.New(
//	    chatdesk.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	    chatdesk.WithNaver(id, secret),
//	    chatdesk.WithKakao(kakaoKey),
//	    chatdesk.WithGoogle(googleKey, cx),
//	)
//	conv := client.NewConversation()
//	turn, _ := client.Discuss(ctx, conv, "I have a question about my order")
//	fmt.Println(turn.State, turn.Reply)
package chatdesk
