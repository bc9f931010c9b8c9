package enrich

import "strings"

// The article text is substituted for this marker in both templates.
const articleMarker = "<ARTICLE>"

const summaryPrompt = `You are an expert news article summariser. Your task is to analyse the following news item and give an importance rating and summary:

<ARTICLE>
[END ARTICLE]

Your task is to:
1. Generate a one sentence summary
2. Generate a two sentence summary
3. Generate a list of keywords representing the primary topic of the article, separated by comma
4. Rate the impact & importance of the article (0-10)
5. Specify whether the news is relevant to the tracked market domain (true/false)

Give your answer in valid json format as per this example, with no additional commentary:

{"one_sentence_summary": "<summary>", "two_sentence_summary": "<summary>", "topic_keywords": "<comma separated keywords>", "impact_importance": <rating 0-10>, "is_relevant": <true/false>}

Notes on impact_importance ratings:
The higher ratings (6+) should be reserved for news with strong impact or wide reaching consequences. Use the lower ratings (0-5) for everyday run of the mill news that won't make waves.
0 means no discernable impact (e.g. it's advertising, a how-to guide, a fluff post or otherwise has no impact)
1-4 means low-mid impact
5 means significant medium level impact
6-9 means medium to strong impact
10 means very strong impact
`

const sentimentPrompt = `You are an expert in semantic analysis. Your task is to analyse the following news item for sentiment about tradeable assets:

<ARTICLE>
[END ARTICLE]

Your task is to determine which assets are mentioned in a way that expresses positive or negative sentiment. You should ignore any that are only tangentially mentioned and not the subject of the news piece. Focus on the assets that any sentiment in the article meaningfully applies to. For each of these you should extract:

1. The type: defi token / coin / chain / exchange / other
2. Its name
3. Sentiment: -10 to 10
4. Is the content of the article likely to correlate with price movement (-10 to 10), with -10 being strong downward movement and 10 being strong upward movement
5. How strongly does the content indicate this predicted movement? (0-10)

Give your answer in valid json format as per this example:

[
	{"type": "<type>", "name": "<name>", "symbol": "<symbol if known>", "org_name": "<organisation name if known>", "sentiment": [-10-10], "movement": [-10-10], "indicator_certainty": 0-10},
	...
]

Note: if there were no assets referenced with meaningful sentiment, return an empty list [].
`

func renderPrompt(template, article string) string {
	return strings.ReplaceAll(template, articleMarker, article)
}
