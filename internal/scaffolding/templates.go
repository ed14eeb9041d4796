package scaffolding

// Bundle 某一 (用途, 风格) 的模板素材
type Bundle struct {
	Intro          string
	Questions      []string
	Encouragements []string
}

// bundleFor 对封闭枚举是全函数：未登记的组合回落到该用途的第一档风格
func bundleFor(purpose Purpose, style Style) Bundle {
	if byStyle, ok := bundles[purpose]; ok {
		if b, ok := byStyle[style]; ok {
			return b
		}
		concrete, _, _ := styleTriple(purpose)
		return byStyle[concrete]
	}
	return bundles[PurposeProblemSolving][StyleBalanced]
}

var bundles = map[Purpose]map[Style]Bundle{
	PurposeProblemSolving: {
		StyleStepByStep: {
			Intro: "Let's break this down into small, concrete pieces.",
			Questions: []string{
				"What is the very first thing the problem gives you?",
				"Can you write down what you know and what you need to find?",
				"What would the simplest version of this problem look like?",
			},
			Encouragements: []string{
				"One small step at a time is exactly how this gets solved.",
				"You don't need the whole answer yet — just the next step.",
			},
		},
		StyleBalanced: {
			Intro: "Let's think about how to approach this.",
			Questions: []string{
				"What strategy seems most promising here?",
				"Have you seen a problem with a similar shape before?",
				"What would happen if you tried the most direct approach first?",
			},
			Encouragements: []string{
				"You have the tools for this — pick one and try it.",
				"A wrong first attempt still teaches you something useful.",
			},
		},
		StyleIndependent: {
			Intro: "You're ready to drive this one yourself.",
			Questions: []string{
				"What's your plan of attack, start to finish?",
				"Is there a more elegant route than the obvious one?",
				"How would you convince someone else your approach is sound?",
			},
			Encouragements: []string{
				"Trust your instincts — you've earned them.",
				"Push through; this is stretch territory and that's the point.",
			},
		},
	},
	PurposeMistakeAnalysis: {
		StyleGentleCorrection: {
			Intro: "Something in this answer went a little sideways — that's completely normal.",
			Questions: []string{
				"Can you walk back through your steps and say each one out loud?",
				"Which part of your answer are you least sure about?",
			},
			Encouragements: []string{
				"Mistakes are where the real learning happens.",
				"You're closer than it feels — one fix and this works.",
			},
		},
		StyleSocraticProbe: {
			Intro: "Let's examine this answer together.",
			Questions: []string{
				"If you plug your answer back in, does everything still hold?",
				"What assumption did you make at the start — is it actually true?",
			},
			Encouragements: []string{
				"Good reasoning survives questioning; let's test yours.",
				"Finding your own error beats being told where it is.",
			},
		},
		StyleDirectExplanation: {
			Intro: "Here's where the answer diverges from the expected path.",
			Questions: []string{
				"Compare your step with the expected one — where do they first differ?",
				"What rule applies at the point where things went wrong?",
			},
			Encouragements: []string{
				"Now that you can see it, you won't miss it next time.",
				"This is a common slip — and an easy one to fix.",
			},
		},
	},
	PurposeReflection: {
		StyleStructured: {
			Intro: "Let's look back at what you just did.",
			Questions: []string{
				"Which step was hardest, and what made it hard?",
				"What would you do differently if you started over?",
			},
			Encouragements: []string{
				"Noticing how you solve things makes the next one easier.",
				"That was real work — take a second to see how far you got.",
			},
		},
		StyleOpenEnded: {
			Intro: "Take a moment to think about this session.",
			Questions: []string{
				"What surprised you about this problem?",
				"Where else could the idea you just used show up?",
			},
			Encouragements: []string{
				"The best learners are the ones who look back.",
				"Carry this insight into the next challenge.",
			},
		},
	},
	PurposeEmotionalSupport: {
		StyleReassuring: {
			Intro: "It's okay — this is a hard spot and you're not stuck for good.",
			Questions: []string{
				"Would it help to step away for a minute and come back fresh?",
				"What's one tiny piece of this that feels manageable?",
			},
			Encouragements: []string{
				"Struggling doesn't mean failing — it means you're at your growth edge.",
				"Every person who mastered this felt exactly like you do now.",
			},
		},
		StyleEnergizing: {
			Intro: "You're on a roll — let's keep the momentum.",
			Questions: []string{
				"Ready to raise the bar a little?",
				"What's the boldest approach you could try next?",
			},
			Encouragements: []string{
				"Confidence like this is earned — use it.",
				"Great streak. Let's see how far it goes.",
			},
		},
	},
	PurposeHint: {
		StyleHintGentle: {
			Intro: "A nudge, not an answer:",
			Questions: []string{
				"Re-read the problem — there's a detail that matters more than it looks.",
				"Think about what kind of answer the question is really asking for.",
			},
			Encouragements: []string{
				"You can get there from here.",
				"That's all you need — give it another go.",
			},
		},
		StyleHintModerate: {
			Intro: "Here's a stronger pointer:",
			Questions: []string{
				"Focus on the relationship between the given values — one of them constrains the others.",
				"The method you used on the previous step applies here too, with one twist.",
			},
			Encouragements: []string{
				"With that in hand, the next move should be clearer.",
				"You're most of the way there.",
			},
		},
		StyleHintDirect: {
			Intro: "Let's be concrete:",
			Questions: []string{
				"Start by writing the governing rule for this step, then substitute what you know.",
				"Apply the standard procedure for this step type, checking each intermediate value.",
			},
			Encouragements: []string{
				"Follow that through and you'll land the step.",
				"One careful pass and this is done.",
			},
		},
	},
}

var emotionAcks = map[Emotion]string{
	EmotionFrustrated: "I can tell this has been frustrating — that's a fair reaction.",
	EmotionConfused:   "It sounds like things got muddled; let's clear the fog together.",
	EmotionAnxious:    "No pressure here — we'll take this at whatever pace works.",
	EmotionConfident:  "Love the confidence — let's put it to work.",
	EmotionExcited:    "Great energy! Let's channel it.",
}
