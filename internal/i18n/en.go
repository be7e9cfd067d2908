package i18n

var english = map[string]string{
	"general.appName":        "AI Crypto Advisor",
	"general.cryptocurrency": "Cryptocurrency",

	"navigation.mainAnalysis":    "Analysis",
	"navigation.expertTraders":   "Experts",
	"navigation.cryptoX":         "Crypto on X",
	"navigation.languageChanged": "Language switched to {language}",

	"app.headerSubtitle":                  "Market analysis and AI-generated advice",
	"app.welcomeTitle":                    "Welcome to AI Crypto Advisor",
	"app.welcomeMessage":                  "Search for a cryptocurrency to see its price, 30-day history and AI advice.",
	"app.searchPlaceholder":               "Search cryptocurrency (e.g. Bitcoin, ETH)",
	"app.noSuggestionsFound":              "No suggestions found.",
	"app.searchErrorSuggestions":          "Could not load suggestions.",
	"app.searchPausedRateLimit":           "Search paused due to rate limiting.",
	"app.processCryptoError":              "Could not fetch data for {cryptoName}.",
	"app.updateDataError":                 "Could not update data for {cryptoName}.",
	"app.geminiApiKeyError":               "The AI API key is not configured. Advice is unavailable.",
	"app.globalErrorPrefix":               "Error:",
	"app.rateLimitActiveError":            "The price API rate limit was reached. Please wait a moment.",
	"app.rateLimitActiveGeneral":          "Rate limit active. Try again in a few seconds.",
	"app.rateLimitPauseMessage":           "Updates are paused.",
	"app.rateLimitCooldownDisplayPrefix":  "Resuming in",
	"app.rateLimitCooldownDisplaySuffix":  "s",
	"app.activeAlertsTitle":               "Active alerts",
	"app.noActiveAlerts":                  "No active alerts.",
	"app.alertConditionDropsTo":           "Drops to {price}",
	"app.alertConditionRisesTo":           "Rises to {price}",
	"app.alertCreatedAt":                  "Created: {date}",
	"app.alertCreated":                    "Alert created for {cryptoName}.",
	"app.alertDeleted":                    "Alert deleted.",
	"app.triggeredAlertTitle":             "Price alert!",
	"app.triggeredAlertMessageDropped":    "{cryptoName} has dropped to {targetPrice} or below.",
	"app.triggeredAlertMessageRisen":      "{cryptoName} has risen to {targetPrice} or above.",
	"app.triggeredAlertCurrentPrice":      "Current price: {currentPrice}",
	"app.footerDisclaimer":                "This is not financial advice. Invest at your own risk.",
	"app.priceLabel":                      "Price",
	"app.change24hLabel":                  "24h change",
	"app.volumeLabel":                     "24h volume",
	"app.marketCapLabel":                  "Market cap",
	"app.lastUpdatedLabel":                "Updated",
	"app.chartSymbolLabel":                "Chart",
	"app.adviceTitle":                     "AI advice",
	"app.adviceLoading":                   "Generating advice...",
	"app.loadingData":                     "Loading data...",

	"advice.BUY":  "BUY",
	"advice.SELL": "SELL",
	"advice.HOLD": "HOLD",
	"advice.INFO": "INFO",

	"sentiment.Positive": "Positive",
	"sentiment.Negative": "Negative",
	"sentiment.Neutral":  "Neutral",
	"sentiment.Mixed":    "Mixed",
	"sentiment.Unknown":  "Unknown",

	"services.gemini.adviceUnavailable":               "The AI advice service is unavailable.",
	"services.gemini.adviceNoData":                    "Not enough data for {cryptoName} to generate advice.",
	"services.gemini.adviceUnparsableSummary":         "The AI answered, but no summary could be extracted.",
	"services.gemini.adviceErrorFetching":             "Could not get advice for {cryptoName}: {details}",
	"services.gemini.tweetAnalysisUnavailable":        "Post analysis is unavailable without an AI key.",
	"services.gemini.tweetAnalysisNoValidData":        "There are no valid posts to analyze.",
	"services.gemini.tweetAnalysisJsonParseError":     "The AI response was not in the expected format.",
	"services.gemini.tweetAnalysisUnparsableResponse": "Unparsable response: {responsePreview}",
	"services.gemini.tweetAnalysisGenericError":       "Error analyzing posts about {cryptoName}: {details}",

	"setAlertModal.title":                "Create price alert",
	"setAlertModal.currentPriceLabel":    "Current price",
	"setAlertModal.targetPriceLabel":     "Target price",
	"setAlertModal.errorInvalidPrice":    "Enter a valid target price greater than zero.",
	"setAlertModal.errorDropPriceHigher": "For a drop alert, the target must be lower than the current price.",
	"setAlertModal.errorRisePriceLower":  "For a rise alert, the target must be higher than the current price.",
	"setAlertModal.noAssetSelected":      "Select a cryptocurrency before creating an alert.",

	"cryptoXView.title":                  "Sentiment on X",
	"cryptoXView.analysisTitle":          "Sentiment analysis: {cryptoName}",
	"cryptoXView.sentimentLabel":         "Sentiment",
	"cryptoXView.narrativesLabel":        "Narratives",
	"cryptoXView.narrativesNotFound":     "No narratives identified.",
	"cryptoXView.summaryLabel":           "Summary",
	"cryptoXView.fetchErrorTitle":        "Posts with errors",
	"cryptoXView.searchOnX":              "Search on X: {url}",
	"cryptoXView.emptyUrlError":          "The link is empty.",
	"cryptoXView.invalidUrlError":        "Invalid link: {url}",
	"cryptoXView.tweetNotFoundError":     "The post does not exist or is private.",
	"cryptoXView.rateLimitProxyError":    "Too many requests to the post service.",
	"cryptoXView.httpErrorProxy":         "HTTP error {status} loading {url}",
	"cryptoXView.noHtmlError":            "The response did not contain the post.",
	"cryptoXView.extractionError":        "Could not extract the post text.",
	"cryptoXView.exceptionLoadingTweet":  "Could not reach the post service.",
	"cryptoXView.errorCoinNotFound":      "No cryptocurrency found for \"{query}\".",
	"cryptoXView.errorNoValidTweetLinks": "Add at least one valid link (http...).",
	"cryptoXView.errorFetchingAllTweets": "None of the posts could be loaded.",
	"cryptoXView.errorRateLimit":         "Rate limit active. Wait before searching.",
	"cryptoXView.errorSearchCrypto":      "Enter a cryptocurrency to search.",

	"expertTradersView.title":              "Experts to follow",
	"expertTradersView.description":        "Reference accounts on the crypto market.",
	"expertTradersView.note":               "Their opinions are not financial advice.",
	"expertTradersView.vitalikDescription": "Co-founder of Ethereum.",
	"expertTradersView.saylorDescription":  "Advocate of Bitcoin as a corporate treasury asset.",
	"expertTradersView.cobieDescription":   "Trader and crypto commentator.",
	"expertTradersView.raoulDescription":   "Macro economist, founder of Real Vision.",
	"expertTradersView.willyDescription":   "On-chain data analyst.",

	"shareAppModal.title":                  "Share the app",
	"shareAppModal.shareTextGeneric":       "Check out this AI crypto advisor!",
	"shareAppModal.shareErrorFileProtocol": "An app opened from a local file cannot be shared.",
	"shareAppModal.shareErrorGeneric":      "Could not share: {details}",
	"shareAppModal.shareOpened":            "The share dialog was opened.",
	"shareAppModal.manualInstructions":     "Your system cannot share directly. Copy this link and send it: {url}",

	"errors.internal":          "An unexpected error occurred.",
	"errors.notFound":          "The resource was not found.",
	"errors.partialData":       "Only partial data was fetched.",
	"errors.malformedResponse": "The service returned an invalid response.",
	"errors.invalidInput":      "Invalid input.",
	"errors.invalidAlert":      "The alert data is not valid.",
	"errors.invalidLocale":     "Unsupported language.",
	"errors.refreshInFlight":   "A refresh is already in progress.",
	"errors.noSelection":       "Select a cryptocurrency first.",
}
