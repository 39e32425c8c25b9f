package chat

import "fmt"

func buildPrompt(prices, context, userPrompt string) string {
	return fmt.Sprintf(`You are GroceryBot.
Grocery prices: %s
Context: %s
User: "%s"
Respond concisely.
`, prices, context, userPrompt)
}
