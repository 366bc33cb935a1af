// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultHandlerTimeout is the default timeout for HTTP handlers.
	DefaultHandlerTimeout = 30 * time.Second
	// DefaultFilename is used when the resource URL has no path segment.
	DefaultFilename = "video-download.mp4"
	// TempPattern is the os.CreateTemp pattern for fetched blobs.
	TempPattern = "mediashare-*.part"
	// TempSuffix marks temporary blobs for cleanup.
	TempSuffix = ".part"
	// UserAgent is sent by the primary fetch when none is configured.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// User-facing landing text.
const (
	TextBrand        = "Media Share"
	TextTitle        = "Votre Vidéo"
	TextSubtitle     = "Regardez la vidéo ci-dessous ou téléchargez-la pour la visionner plus tard."
	TextNoVideoTag   = "Votre navigateur ne supporte pas la balise vidéo."
	TextDownload     = "Télécharger la Vidéo"
	TextDownloading  = "Téléchargement..."
	TextWatch        = "Regarder"
	TextFormat       = "Format MP4 • Haute Qualité"
	TextRights       = "Tous droits réservés."
	TextSaved        = "Vidéo enregistrée :"
	TextOpened       = "La vidéo a été ouverte dans votre navigateur."
	TextAffiliateDef = "S'INSCRIRE SUR PAYWIN"
	TextHistory      = "Derniers essais"
	TextStatusSaved  = "enregistrée"
	TextStatusOpened = "ouverte dans le navigateur"
	TextStatusFailed = "échec"

	// MsgManualSave is shown when neither download strategy worked.
	MsgManualSave = "Impossible de télécharger la vidéo automatiquement. Veuillez faire un clic droit sur la vidéo et choisir 'Enregistrer la vidéo sous...'"
)

// HTTP response messages.
const (
	// RespLandingRetrieved is returned with the landing description.
	RespLandingRetrieved = "landing retrieved"
	// RespRenderFailed is returned when the landing page cannot be rendered.
	RespRenderFailed = "render failed"
)
