package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Handlers are the only place pipeline errors become HTTP. The body shape
// is always {"error": <human message>, "code": "ERR_*"}; anything beyond
// that stays in the logs.

func statusForCode(code string) int {
	switch code {
	case "ERR_MALFORMED_URL":
		return fiber.StatusBadRequest
	case "ERR_NO_EPISODES":
		return fiber.StatusNotFound
	case "ERR_FEED_PARSE":
		return fiber.StatusUnprocessableEntity
	case "ERR_DOWNLOAD_FAILED":
		return fiber.StatusBadGateway
	case "ERR_MODEL_UNAVAILABLE":
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func publicMessage(code string) string {
	switch code {
	case "ERR_MALFORMED_URL":
		return "The submitted URL is not a valid http(s) URL"
	case "ERR_NO_EPISODES":
		return "The feed has no episode with audio"
	case "ERR_FEED_PARSE":
		return "The URL does not point to a parsable podcast feed"
	case "ERR_DOWNLOAD_FAILED":
		return "Could not download audio from the source"
	case "ERR_MODEL_UNAVAILABLE":
		return "The transcription backend is unavailable, try again later"
	case "ERR_UNREADABLE_AUDIO":
		return "The downloaded file could not be decoded as audio"
	default:
		return "Internal server error"
	}
}

func writeError(c *fiber.Ctx, err error) error {
	code := types.ErrorCode(err)
	return c.Status(statusForCode(code)).JSON(fiber.Map{
		"error": publicMessage(code),
		"code":  code,
	})
}
