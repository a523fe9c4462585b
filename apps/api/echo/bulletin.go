package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core/bulletin"
)

type bulletinApi struct {
	svc bulletin.ServiceInterface
}

func registerBulletinAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc bulletin.ServiceInterface) {
	api := bulletinApi{svc: svc}

	bg := g.Group("/bulletins", jwt)

	mg := bg.Group("/me", studentMiddleware())
	mg.GET("", api.retrieveMine)
	mg.GET("/pdf", api.downloadMine)
	mg.POST("/email", api.emailMine)

	bg.GET("/:id/pdf", api.download, teacherMiddleware())
}

// Handlers

func (api *bulletinApi) retrieveMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	b, err := api.svc.Compute(ctx.Request().Context(), claims.Subject, ctx.QueryParam("period"))
	if err != nil {
		return errors.Wrap(err, "computing bulletin")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *bulletinApi) downloadMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return api.sendPDF(ctx, claims.Subject)
}

func (api *bulletinApi) download(ctx echo.Context) error {
	return api.sendPDF(ctx, ctx.Param("id"))
}

// sendPDF responds with the bulletin document of `studentID` as an attachment.
func (api *bulletinApi) sendPDF(ctx echo.Context, studentID string) error {
	b, err := api.svc.Compute(ctx.Request().Context(), studentID, ctx.QueryParam("period"))
	if err != nil {
		return errors.Wrap(err, "computing bulletin")
	}
	doc, err := api.svc.Render(ctx.Request().Context(), b)
	if err != nil {
		return errors.Wrap(err, "rendering bulletin")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+bulletin.Filename(b))
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

func (api *bulletinApi) emailMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	b, err := api.svc.Email(ctx.Request().Context(), claims.Subject, ctx.QueryParam("period"))
	if err != nil {
		return errors.Wrap(err, "emailing bulletin")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "bulletin queued for " + b.Student.Email})
}
