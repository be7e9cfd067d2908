package i18n

var spanish = map[string]string{
	"general.appName":        "Asesor Cripto IA",
	"general.cryptocurrency": "Criptomoneda",

	"navigation.mainAnalysis":    "Análisis",
	"navigation.expertTraders":   "Expertos",
	"navigation.cryptoX":         "Cripto en X",
	"navigation.languageChanged": "Idioma cambiado a {language}",

	"app.headerSubtitle":                  "Análisis de mercado y consejos generados por IA",
	"app.welcomeTitle":                    "Bienvenido al Asesor Cripto IA",
	"app.welcomeMessage":                  "Busca una criptomoneda para ver su precio, su historial de 30 días y un consejo de la IA.",
	"app.searchPlaceholder":               "Buscar criptomoneda (ej. Bitcoin, ETH)",
	"app.noSuggestionsFound":              "No se encontraron sugerencias.",
	"app.searchErrorSuggestions":          "No se pudieron cargar las sugerencias.",
	"app.searchPausedRateLimit":           "Búsqueda en pausa por límite de peticiones.",
	"app.processCryptoError":              "No se pudieron obtener los datos de {cryptoName}.",
	"app.updateDataError":                 "No se pudieron actualizar los datos de {cryptoName}.",
	"app.geminiApiKeyError":               "La clave de la API de IA no está configurada. Los consejos no están disponibles.",
	"app.globalErrorPrefix":               "Error:",
	"app.rateLimitActiveError":            "Se alcanzó el límite de peticiones de la API de precios. Espera un momento.",
	"app.rateLimitActiveGeneral":          "Límite de peticiones activo. Inténtalo de nuevo en unos segundos.",
	"app.rateLimitPauseMessage":           "Las actualizaciones están en pausa.",
	"app.rateLimitCooldownDisplayPrefix":  "Reanudando en",
	"app.rateLimitCooldownDisplaySuffix":  "s",
	"app.activeAlertsTitle":               "Alertas activas",
	"app.noActiveAlerts":                  "No hay alertas activas.",
	"app.alertConditionDropsTo":           "Baja a {price}",
	"app.alertConditionRisesTo":           "Sube a {price}",
	"app.alertCreatedAt":                  "Creada: {date}",
	"app.alertCreated":                    "Alerta creada para {cryptoName}.",
	"app.alertDeleted":                    "Alerta eliminada.",
	"app.triggeredAlertTitle":             "¡Alerta de precio!",
	"app.triggeredAlertMessageDropped":    "{cryptoName} ha bajado a {targetPrice} o menos.",
	"app.triggeredAlertMessageRisen":      "{cryptoName} ha subido a {targetPrice} o más.",
	"app.triggeredAlertCurrentPrice":      "Precio actual: {currentPrice}",
	"app.footerDisclaimer":                "Esto no es asesoramiento financiero. Invierte bajo tu propia responsabilidad.",
	"app.priceLabel":                      "Precio",
	"app.change24hLabel":                  "Cambio 24h",
	"app.volumeLabel":                     "Volumen 24h",
	"app.marketCapLabel":                  "Capitalización",
	"app.lastUpdatedLabel":                "Actualizado",
	"app.chartSymbolLabel":                "Gráfico",
	"app.adviceTitle":                     "Consejo de la IA",
	"app.adviceLoading":                   "Generando consejo...",
	"app.loadingData":                     "Cargando datos...",

	"advice.BUY":  "COMPRAR",
	"advice.SELL": "VENDER",
	"advice.HOLD": "MANTENER",
	"advice.INFO": "INFO",

	"sentiment.Positive": "Positivo",
	"sentiment.Negative": "Negativo",
	"sentiment.Neutral":  "Neutral",
	"sentiment.Mixed":    "Mixto",
	"sentiment.Unknown":  "Desconocido",

	"services.gemini.adviceUnavailable":               "El servicio de consejos de IA no está disponible.",
	"services.gemini.adviceNoData":                    "No hay datos suficientes de {cryptoName} para generar un consejo.",
	"services.gemini.adviceUnparsableSummary":         "La IA respondió, pero no se pudo extraer un resumen.",
	"services.gemini.adviceErrorFetching":             "No se pudo obtener el consejo para {cryptoName}: {details}",
	"services.gemini.tweetAnalysisUnavailable":        "El análisis de publicaciones no está disponible sin clave de IA.",
	"services.gemini.tweetAnalysisNoValidData":        "No hay publicaciones válidas para analizar.",
	"services.gemini.tweetAnalysisJsonParseError":     "La respuesta de la IA no tenía el formato esperado.",
	"services.gemini.tweetAnalysisUnparsableResponse": "Respuesta no interpretable: {responsePreview}",
	"services.gemini.tweetAnalysisGenericError":       "Error al analizar publicaciones sobre {cryptoName}: {details}",

	"setAlertModal.title":                "Crear alerta de precio",
	"setAlertModal.currentPriceLabel":    "Precio actual",
	"setAlertModal.targetPriceLabel":     "Precio objetivo",
	"setAlertModal.errorInvalidPrice":    "Introduce un precio objetivo válido mayor que cero.",
	"setAlertModal.errorDropPriceHigher": "Para una alerta de bajada, el objetivo debe ser menor que el precio actual.",
	"setAlertModal.errorRisePriceLower":  "Para una alerta de subida, el objetivo debe ser mayor que el precio actual.",
	"setAlertModal.noAssetSelected":      "Selecciona una criptomoneda antes de crear una alerta.",

	"cryptoXView.title":                  "Sentimiento en X",
	"cryptoXView.analysisTitle":          "Análisis de sentimiento: {cryptoName}",
	"cryptoXView.sentimentLabel":         "Sentimiento",
	"cryptoXView.narrativesLabel":        "Narrativas",
	"cryptoXView.narrativesNotFound":     "No se identificaron narrativas.",
	"cryptoXView.summaryLabel":           "Resumen",
	"cryptoXView.fetchErrorTitle":        "Publicaciones con error",
	"cryptoXView.searchOnX":              "Buscar en X: {url}",
	"cryptoXView.emptyUrlError":          "El enlace está vacío.",
	"cryptoXView.invalidUrlError":        "Enlace no válido: {url}",
	"cryptoXView.tweetNotFoundError":     "La publicación no existe o es privada.",
	"cryptoXView.rateLimitProxyError":    "Demasiadas peticiones al servicio de publicaciones.",
	"cryptoXView.httpErrorProxy":         "Error HTTP {status} al cargar {url}",
	"cryptoXView.noHtmlError":            "La respuesta no contenía la publicación.",
	"cryptoXView.extractionError":        "No se pudo extraer el texto de la publicación.",
	"cryptoXView.exceptionLoadingTweet":  "No se pudo contactar con el servicio de publicaciones.",
	"cryptoXView.errorCoinNotFound":      "No se encontró ninguna criptomoneda para \"{query}\".",
	"cryptoXView.errorNoValidTweetLinks": "Añade al menos un enlace válido (http...).",
	"cryptoXView.errorFetchingAllTweets": "No se pudo cargar ninguna de las publicaciones.",
	"cryptoXView.errorRateLimit":         "Límite de peticiones activo. Espera antes de buscar.",
	"cryptoXView.errorSearchCrypto":      "Introduce una criptomoneda para buscar.",

	"expertTradersView.title":              "Expertos a seguir",
	"expertTradersView.description":        "Cuentas de referencia sobre el mercado cripto.",
	"expertTradersView.note":               "Sus opiniones no son asesoramiento financiero.",
	"expertTradersView.vitalikDescription": "Cofundador de Ethereum.",
	"expertTradersView.saylorDescription":  "Defensor de Bitcoin como reserva de valor corporativa.",
	"expertTradersView.cobieDescription":   "Trader y comentarista del ecosistema cripto.",
	"expertTradersView.raoulDescription":   "Macroeconomista, fundador de Real Vision.",
	"expertTradersView.willyDescription":   "Analista de datos on-chain.",

	"shareAppModal.title":                  "Compartir la aplicación",
	"shareAppModal.shareTextGeneric":       "¡Mira este asesor de criptomonedas con IA!",
	"shareAppModal.shareErrorFileProtocol": "No se puede compartir una aplicación abierta desde un archivo local.",
	"shareAppModal.shareErrorGeneric":      "No se pudo compartir: {details}",
	"shareAppModal.shareOpened":            "Se abrió el diálogo para compartir.",
	"shareAppModal.manualInstructions":     "Tu sistema no permite compartir directamente. Copia este enlace y envíalo: {url}",

	"errors.internal":          "Ocurrió un error inesperado.",
	"errors.notFound":          "No se encontró el recurso.",
	"errors.partialData":       "Solo se obtuvieron datos parciales.",
	"errors.malformedResponse": "El servicio devolvió una respuesta no válida.",
	"errors.invalidInput":      "Entrada no válida.",
	"errors.invalidAlert":      "Los datos de la alerta no son válidos.",
	"errors.invalidLocale":     "Idioma no soportado.",
	"errors.refreshInFlight":   "Ya hay una actualización en curso.",
	"errors.noSelection":       "Selecciona primero una criptomoneda.",
}
