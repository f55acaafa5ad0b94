package intent

// Keyword lists for the deterministic fallback classifier. Scoring counts
// literal substring matches against the input; chat has no keywords and
// wins only when nothing else scores.
var keywordMap = map[Intent][]string{
	IntentEmpathy: {
		"つらい", "しんどい", "疲れた", "嫌だ", "ひどい", "悲しい",
		"不安", "怖い", "寂しい", "イライラ", "ムカつく", "最悪",
		"聞いて", "吐き出し", "愚痴", "ため息",
	},
	IntentKnowledge: {
		"教えて", "知りたい", "とは", "って何", "ですか",
		"違いは", "方法は", "やり方", "調べ", "検索",
		"参考", "文献", "論文", "データ",
	},
	IntentDeepDive: {
		"どうすれば", "解決", "改善", "対策", "問題",
		"原因", "なぜ", "課題", "困って", "うまくいかない",
		"分析", "検討", "整理したい", "深掘り",
	},
	IntentBrainstorm: {
		"アイデア", "案", "ひらめき", "思いつき", "仮説",
		"壁打ち", "ブレスト", "発想", "もし", "可能性",
		"新しい", "試したい", "どうだろう", "妄想",
	},
}
