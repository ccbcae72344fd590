package persona

import (
	"strings"
)

// FallbackInput selects a hand-written template when generation is skipped,
// unavailable, or failed.
type FallbackInput struct {
	Prompt          string
	Name            string
	AgeGroup        string
	Lang            string
	HasContext      bool   // at least one readable retrieved chunk
	ContextReliable bool   // retrieval classified reliable
	Snippet         string // first retrieved chunk, used when reliable
}

const snippetChars = 280

// FallbackReply picks a templated answer. Branches: greeting detection,
// reliable-context summarization, then a generic persona answer; each in the
// requested language and age register.
func FallbackReply(in FallbackInput) string {
	hindi := IsHindi(in.Lang)
	age := NormalizeAgeGroup(in.AgeGroup)

	if isGreeting(in.Prompt) {
		return greeting(age, hindi, in.Name)
	}

	if in.HasContext && in.ContextReliable {
		snippet := strings.TrimSpace(in.Snippet)
		if capped := truncateRunes(snippet, snippetChars); capped != snippet {
			snippet = capped + "..."
		}
		if snippet != "" {
			if hindi {
				return "मुझे अपनी किताबों में यह मिला: " + snippet +
					" — गंगा हम सबकी है, इसे साफ रखना हम सबका काम है!"
			}
			return "Here is something from my river books: " + snippet +
				" — the Ganga belongs to all of us, and keeping it clean is everyone's job!"
		}
	}

	return generic(age, hindi)
}

func isGreeting(prompt string) bool {
	p := strings.ToLower(strings.TrimSpace(prompt))
	greetings := []string{"hello", "hi", "hey", "namaste", "namaskar", "नमस्ते", "नमस्कार", "हेलो", "हाय"}
	for _, g := range greetings {
		if p == g || strings.HasPrefix(p, g+" ") || strings.HasPrefix(p, g+",") || strings.HasPrefix(p, g+"!") {
			return true
		}
	}
	return false
}

func greeting(age string, hindi bool, name string) string {
	n := strings.TrimSpace(name)
	switch {
	case hindi && age == AgeKid:
		if n == "" {
			n = "दोस्त"
		}
		return "नमस्ते " + n + "! मैं चाचा हूँ, गंगा नदी का दोस्त। एक छोटी कहानी सुनो: एक दिन एक छोटी मछली ने मुझसे कहा कि नदी में कचरा आ गया है। " +
			"फिर गाँव के बच्चों ने मिलकर किनारा साफ किया, और मछली फिर से खुशी से तैरने लगी! " +
			"तुम भी आज एक काम कर सकते हो — कचरा हमेशा कूड़ेदान में डालो। बोलो, गंगा के बारे में और क्या जानना है?"
	case hindi:
		if n == "" {
			return "नमस्ते! मैं चाचा हूँ। गंगा नदी, उसकी सफाई और हम सब क्या कर सकते हैं — इस बारे में मुझसे कुछ भी पूछिए।"
		}
		return "नमस्ते " + n + "! मैं चाचा हूँ। गंगा नदी, उसकी सफाई और हम सब क्या कर सकते हैं — इस बारे में मुझसे कुछ भी पूछिए।"
	case age == AgeKid:
		if n == "" {
			n = "friend"
		}
		return "Hello " + n + "! I am ChaCha, a friend of the river Ganga. Here is a tiny story: one day a little fish told me the river was getting full of rubbish. " +
			"Then the children of the village cleaned the bank together, and the fish swam happily again! " +
			"You can help too — always put rubbish in the bin. Now, what would you like to know about the Ganga?"
	case age == AgeTeen:
		return "Hey! I'm ChaCha. Ask me anything about the Ganga — why it matters, what's polluting it, and what people your age are actually doing about it."
	default:
		return "Hello! I'm ChaCha, the river-awareness mascot. Ask me about the Ganga, its pollution challenges, and practical ways to help keep it clean."
	}
}

func generic(age string, hindi bool) string {
	switch {
	case hindi && age == AgeKid:
		return "गंगा हमारी सबसे प्यारी नदी है! उसमें मछलियाँ और डॉल्फ़िन रहती हैं। जब हम कचरा नदी में नहीं फेंकते, तो वे सब खुश रहती हैं। " +
			"आज से एक छोटा वादा करो — कचरा सिर्फ कूड़ेदान में!"
	case hindi:
		return "गंगा करोड़ों लोगों को पानी देती है, पर कचरे और गंदे पानी से उसे नुकसान पहुँचता है। " +
			"हम सब मदद कर सकते हैं: कचरा नदी में न फेंकें, पानी बचाएँ, और सफाई अभियानों में हिस्सा लें।"
	case age == AgeKid:
		return "The Ganga is a very special river! Fish and even dolphins live in it. When we keep rubbish out of the water, they all stay happy and healthy. " +
			"Here is your little mission for today: rubbish goes only in the bin!"
	case age == AgeTeen:
		return "The Ganga supplies water to millions of people, but plastic waste and untreated sewage are hurting it. " +
			"Real talk: skipping single-use plastic and joining a local clean-up actually moves the needle."
	default:
		return "The Ganga sustains millions of people, yet it faces serious pressure from waste and untreated sewage. " +
			"Everyday actions help: keep waste out of drains, conserve water, and support local river clean-up efforts."
	}
}
