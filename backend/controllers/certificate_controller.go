package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CertificateController struct {
	Certificates *services.CertificateService
}

func NewCertificateController(certificates *services.CertificateService) *CertificateController {
	return &CertificateController{Certificates: certificates}
}

func (cc *CertificateController) Issue(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	cert, err := cc.Certificates.Issue(c.UserContext(), currentUserID(c), courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, cert)
}

func (cc *CertificateController) List(c *fiber.Ctx) error {
	certs, err := cc.Certificates.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return utils.OK(c, certs)
}
